// Package delivery serves a recipient's notifications as a cursor-based feed.
//
// A client holds a watermark, the highest notification id it has seen,
// starting at 0. A fetch with watermark 0 returns the newest bounded page;
// any other fetch returns every newer record. Feed implements the client side.
package delivery
