// Package models contains GORM persistence models for the gateway's own
// tables. Domain types stay free of ORM tags; models map to and from them.
package models
