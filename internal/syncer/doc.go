// Package syncer refreshes the movie cache from the watchlist.
//
// A run is a strictly sequential batch: scrape the watchlist page for title
// identifiers, resolve each to a catalog id, fetch full details per resolved id,
// normalize, and upsert. Resolution misses and unusable detail responses are
// skipped silently. Any transport or store failure aborts the rest of the run;
// rows written before the failure stay written.
package syncer
