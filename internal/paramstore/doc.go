// Package paramstore provides key/value parameter stores for report
// settings: an in-memory store, used by a Reporter built without a store,
// and a SQLite store that persists parameters the way the ERP's
// configuration table does.
package paramstore
