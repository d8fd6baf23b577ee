// Package settings defines the keyed settings substrates the profile
// engine persists into.
//
// Two substrates exist, mirroring the platform split the engine was built
// against:
//
//   - Store: scalar system settings (strings and ints) keyed by (scope,
//     key), with change notifications published to the bus on every write.
//   - Prefs: a namespaced local key/value store with no notifications,
//     used for per-profile time-trigger slots.
//
// Implementations: Memory (this package, used in tests and as a default)
// and the SQLite-backed store in internal/store.
package settings

// Scope distinguishes per-user system settings from device-global ones.
type Scope string

const (
	// ScopeSystem is the per-user settings table.
	ScopeSystem Scope = "system"
	// ScopeGlobal is the device-global settings table.
	ScopeGlobal Scope = "global"
)

// Keys owned by the profile engine. All live in ScopeSystem.
const (
	// KeyProfilesEnabled gates trigger evaluation and active-profile
	// enforcement system-wide. Int, default 1 (enabled).
	KeyProfilesEnabled = "system_profiles_enabled"

	// KeyActiveProfile holds the UUID string of the active profile.
	// Absent or stale values mean "no active profile"; toggling
	// KeyProfilesEnabled never clears it.
	KeyActiveProfile = "active_profile"

	// KeyProfileList holds the JSON array of profile definitions, in
	// definition order. The registry is its single writer.
	KeyProfileList = "system_profiles"

	// KeyAppTriggerList holds the JSON document mapping profile UUID to
	// the set of app identifiers that trigger it.
	KeyAppTriggerList = "profile_app_trigger_list"
)

// Store is the scalar settings substrate.
//
// GetString reports ok=false when the key is absent; absence is not an
// error. Writes publish a change-notification topic for the key; the
// notification may be observed before or after the write returns from the
// caller's point of view, so observers must recompute from the store
// rather than apply deltas.
type Store interface {
	GetString(key string, scope Scope) (value string, ok bool, err error)
	PutString(key, value string, scope Scope) error
	GetInt(key string, def int, scope Scope) (int, error)
	PutInt(key string, value int, scope Scope) error
	Delete(key string, scope Scope) error
}

// Prefs is the namespaced local key/value substrate.
//
// Get reports ok=false for absent keys. Delete of an absent key is a
// no-op. Keys returns the namespace's keys in unspecified order.
type Prefs interface {
	Get(namespace, key string) (value string, ok bool, err error)
	Put(namespace, key, value string) error
	DeletePref(namespace, key string) error
	Keys(namespace string) ([]string, error)
}
