// Package domain models the city distance table and the per-poll availability
// snapshots built from the public vaccine status feed.
//
// # Data Source
//
// City coordinates come from a static US zip code dataset (one row per zip,
// with city name, two-letter state code, and a WGS-84 centroid). A single city
// usually spans many zips, and a single zip occasionally appears more than
// once with slightly different coordinates.
//
// Availability comes from the pharmacy's public status JSON, fetched once per
// state. Each state document lists cities and a free-text status:
//
//	{"responsePayloadData":{"data":{"NY":[{"city":"ALBANY","status":"Available"}]}}}
//
// Only the literal status "Available" counts. Feed city names are upper case,
// so they are title-cased before joining against the distance table.
//
// # Distance Table
//
// Built once per home location by [BuildFilteredTable]:
//
//	home coordinate  = mean lat/lng of every row sharing the home zip
//	distance         = great-circle miles from home, rounded to 0.1
//	filter           = distance <= radius
//	dedupe           = nearest row per (city, state)
//	order            = state, city, distance
//
// A home zip with no rows in the dataset is rejected with [ErrZipNotFound]
// rather than producing undefined distances.
//
// # Snapshots
//
// A snapshot is the set of in-radius cities reporting availability at one poll,
// ordered by distance with distances truncated to whole miles. Snapshots are
// compared row-for-row with [SnapshotsEqual]; any difference (including order)
// counts as a change.
package domain
