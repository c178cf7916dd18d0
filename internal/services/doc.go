// Package services defines the error taxonomy shared by the pipeline
// components. Errors are tagged with sentinel markers so callers can
// classify a failure (transient, operational, permission, fatal) without
// string matching.
package services
