// Package models contains GORM-specific persistence models that map to database tables.
// These models are separate from domain entities to keep the domain layer free
// from ORM concerns.
//
// Structure:
//   - base.go: BaseModel and AggregateModel (version + soft-delete flag)
//   - identity.go: users
//   - faculty.go: teacher_positions, teachers, teacher_position_assignments,
//     teacher_code_sequences
package models
