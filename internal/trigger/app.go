package trigger

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/roach88/profiled/internal/settings"
)

// AppEntry pairs an app identifier with its display label, the unit the
// selection UI lists.
type AppEntry struct {
	ID    string `json:"id"`
	Label string `json:"label"`
}

var labelCollator = collate.New(language.Und, collate.IgnoreCase)

// SortEntries orders entries case-insensitively by display label, ties
// broken by identifier. This is the presentation order; membership
// itself is keyed by identifier only.
func SortEntries(entries []AppEntry) {
	sort.SliceStable(entries, func(i, j int) bool {
		if c := labelCollator.CompareString(entries[i].Label, entries[j].Label); c != 0 {
			return c < 0
		}
		return entries[i].ID < entries[j].ID
	})
}

// AppStore owns the persisted app-trigger document: one JSON object under
// a single settings key, mapping profile UUID to the array of app
// identifiers that trigger it.
//
// An app identifier belongs to at most one profile at a time; Toggle
// re-validates this even though callers are expected to have disabled the
// conflicting path already.
//
// Every mutation is a full read-modify-write of the document. No
// cross-process lock protects it: concurrent writers race and the later
// write wins, which is the accepted consistency model.
type AppStore struct {
	store settings.Store
	log   *slog.Logger
}

// NewAppStore creates an AppStore persisting through store.
func NewAppStore(store settings.Store, log *slog.Logger) *AppStore {
	if log == nil {
		log = slog.Default()
	}
	return &AppStore{store: store, log: log}
}

// Load parses the document once and splits it from the requesting
// profile's point of view: the identifiers it owns, and the identifiers
// claimed by every other profile.
func (s *AppStore) Load(profileID uuid.UUID) (owned, claimedElsewhere map[string]bool, err error) {
	doc, err := s.readDocument()
	if err != nil {
		return nil, nil, err
	}

	owned = make(map[string]bool)
	claimedElsewhere = make(map[string]bool)
	key := profileID.String()
	for profileKey, apps := range doc {
		for _, app := range apps {
			app = strings.TrimSpace(app)
			if app == "" {
				continue
			}
			if profileKey == key {
				owned[app] = true
			} else {
				claimedElsewhere[app] = true
			}
		}
	}
	return owned, claimedElsewhere, nil
}

// Toggle adds or removes one app identifier in the profile's trigger set
// and rewrites the document. Selecting an identifier owned by another
// profile fails with an already-claimed error; deselection is always
// allowed.
//
// The document is re-read immediately before writing so that unrelated
// profiles' concurrent edits are carried forward where possible.
func (s *AppStore) Toggle(profileID uuid.UUID, appID string, selected bool) error {
	appID = strings.TrimSpace(appID)
	if appID == "" {
		return fmt.Errorf("empty app identifier")
	}

	doc, err := s.readDocument()
	if err != nil {
		return err
	}

	key := profileID.String()
	if selected {
		for profileKey, apps := range doc {
			if profileKey == key {
				continue
			}
			for _, app := range apps {
				if strings.TrimSpace(app) == appID {
					return newClaimedError(key, appID)
				}
			}
		}
	}

	set := make(map[string]bool, len(doc[key])+1)
	for _, app := range doc[key] {
		if app = strings.TrimSpace(app); app != "" {
			set[app] = true
		}
	}
	if selected {
		set[appID] = true
	} else {
		delete(set, appID)
	}

	apps := make([]string, 0, len(set))
	for app := range set {
		apps = append(apps, app)
	}
	sort.Strings(apps)
	doc[key] = apps

	if err := s.writeDocument(doc); err != nil {
		return err
	}
	s.log.Debug("app trigger set updated", "profile", key, "apps", len(apps))
	return nil
}

// RemoveProfile drops the profile's key from the document. Invoked when
// the profile is deleted or reset; removing an absent key is a no-op.
func (s *AppStore) RemoveProfile(profileID uuid.UUID) error {
	doc, err := s.readDocument()
	if err != nil {
		return err
	}
	key := profileID.String()
	if _, ok := doc[key]; !ok {
		return nil
	}
	delete(doc, key)
	return s.writeDocument(doc)
}

// readDocument returns the parsed document. Absence is the normal
// first-run state and a malformed value is treated as absent: both yield
// an empty document, never an error.
func (s *AppStore) readDocument() (map[string][]string, error) {
	raw, ok, err := s.store.GetString(settings.KeyAppTriggerList, settings.ScopeSystem)
	if err != nil {
		return nil, fmt.Errorf("failed to read app trigger document: %w", err)
	}
	if !ok || raw == "" {
		return make(map[string][]string), nil
	}

	var doc map[string][]string
	if err := json.Unmarshal([]byte(raw), &doc); err != nil {
		s.log.Warn("malformed app trigger document, treating as empty", "error", err)
		return make(map[string][]string), nil
	}
	if doc == nil {
		doc = make(map[string][]string)
	}
	return doc, nil
}

func (s *AppStore) writeDocument(doc map[string][]string) error {
	raw, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("failed to encode app trigger document: %w", err)
	}
	if err := s.store.PutString(settings.KeyAppTriggerList, string(raw), settings.ScopeSystem); err != nil {
		return fmt.Errorf("failed to write app trigger document: %w", err)
	}
	return nil
}
