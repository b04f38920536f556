// Package mastery derives per-topic knowledge and struggle signals from card
// memory states and the review log, and document-level progress from card
// states alone.
package mastery
