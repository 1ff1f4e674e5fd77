// Package rendition maps requested aspect ratios to conversion jobs.
//
// Profiles are data driven: the registry is built from configuration and the
// planner only ever looks ratios up by key. One job is submitted per
// requested ratio and the expected output location of each is recorded on the
// content item before it moves to DISTRIBUTING.
package rendition
