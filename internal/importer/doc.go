// Package importer orchestrates mirroring a source git repository into a
// hosted GitHub account.
//
// The Service coordinates the full pipeline: dependency verification, token
// validation, destination probing with an overwrite confirmation gate,
// repository creation, mirror clone and push, an optional default-branch
// update, and guaranteed staging cleanup. CommandBuilder exposes the pipeline
// as a Cobra command with interactive fallback for missing values.
package importer
