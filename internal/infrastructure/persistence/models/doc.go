// Package models contains GORM persistence models that map to database tables.
// They are kept apart from domain entities so the domain layer stays free of ORM tags;
// each model converts with ToDomain / XModelFromDomain.
//
// Structure:
//   - base.go: shared columns (id, timestamps, version, tenant)
//   - identity.go: tenants and users
//   - profile.go: seller and buyer profiles
//   - finance.go: expense records
//   - approval.go: approval requests
package models
