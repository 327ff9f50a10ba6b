// Package service contains the application-specific use cases and business
// logic. It orchestrates interactions between domain objects and the stores
// defined in internal/store to fulfill application features.
//
// Key components:
//
// 1. NotificationService persists notifications and hands a real-time event
// to the broadcast dispatcher.
//
// 2. TaskService performs task mutations, each followed by a notification, and
// answers filtered task queries.
//
// 3. UserService covers registration, login with the approval gate, admin
// approval and password changes.
//
// Services receive their dependencies through constructor injection and never
// depend on a specific storage backend.
package service
