// Package service contains the business logic.
//
// It sits between the handler and repository layers. Every entity kind gets
// an EntityService: a SyncCoordinator that writes to the entity store and
// mirrors into the search index, plus a QueryService that answers searches.
package service
