// Package defaults centralizes timeout and rate-limit constants so
// related values are tuned together rather than scattered as literals.
package defaults
