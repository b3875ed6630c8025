// Package mapping translates between persisted entities and transfer objects.
//
// A Translator declares one rule set per direction. Forward translation
// builds a transfer object from an entity. Reverse translation resolves
// whether the target entity is new or existing (MarkNewWhen,
// MarkExistingWhen), optionally links it into the root/version model
// (AttachVersioning), applies the rules and reconciles child collections
// against what is already persisted. Finalize stages the resulting inserts,
// updates and deletes on a Store; committing them is the caller's job.
//
// Nothing is staged unless every rule succeeded.
package mapping
