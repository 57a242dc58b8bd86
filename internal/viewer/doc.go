// Package viewer implements the data-presentation state machine behind the
// dataset viewer: dataset selection, asynchronous loading, row shuffling,
// column ordering, and the derivation of what should be rendered.
//
// A Controller owns one ViewState. Only its methods mutate that state;
// renderers receive read-only Snapshots and dispatch on Snapshot.View().
package viewer
