// Package domain provides the entity layer of the movie catalog.
//
// This package follows the same layering as the rest of the module:
//   - Defines the Movie and Person entities with encapsulated, validated state
//   - Exposes one pure check function per property, returning a violation.Violation
//   - Defines the SlotStore interface that storage backends implement
//   - Converts entities to and from their persisted record form
//
// Entities never hold pointers to each other. A Movie refers to its director and
// actors by person id, and callers resolve those ids through the person registry.
// The only infrastructure concern in here is warning-level logging when a
// persisted record fails to deserialize.
package domain
