// Package mongodb implements the store interfaces on MongoDB.
//
// Entity ids are UUID strings stored in _id. Collections are "users",
// "tasks" and "notifications"; EnsureIndexes creates the unique email
// index and the per-user listing indexes.
package mongodb
