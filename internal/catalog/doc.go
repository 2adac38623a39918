// Package catalog defines the cached movie record and the store contract
// shared by the sync pipeline and the recommendation endpoint.
package catalog
