// Package split partitions a document's pages so that every upload stays
// under the server's size ceiling on document.json.
//
// # Algorithm
//
// [Split] makes one pass over the pages in order. Each page is appended to
// an accumulator document and the accumulator is serialized and measured.
// When the page would push the accumulator over the budget, the accumulator
// is emitted as a partition and a new one is started with just that page.
// There is no backtracking and no attempt at optimal packing: pages stay
// contiguous and in order, which keeps page ranges readable in the titles
// and in error reports.
//
// A page that is over budget on its own can never be placed and fails the
// split with a [*PageTooLargeError] naming the page. This includes the very
// first page; no empty partition is ever produced.
//
// # Trivial Documents
//
// Documents with zero or one page are returned as a single partition
// holding the original document, without checking the budget. Upload-time
// validation in the bundle package catches an oversized single page.
//
// # Sharing
//
// Partitions are derived from the source document: they share its pages and
// its identity factory, and each has its own copy of the title, version,
// settings, bootstrap data and collections. Nothing in the source document
// is modified.
package split
