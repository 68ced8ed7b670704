package ledger

import (
	"context"
	"encoding/json"
	"log"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// saveBlob is the durable subset of State. Transient battle state (live
// events, hotspot layout) deliberately never touches disk; hotspots are
// regenerated on boot. The schema is additive-only: absent fields load
// as their defaults.
type saveBlob struct {
	CGT           *float64             `json:"cgt,omitempty"`
	TotalMined    *float64             `json:"total_cgt_mined,omitempty"`
	PrestigeSeeds *int                 `json:"prestige_seeds,omitempty"`
	Upgrades      map[string]int       `json:"upgrades,omitempty"`
	DroneUpgrades map[string]int       `json:"drone_upgrades,omitempty"`
	Relics        []string             `json:"relics,omitempty"`
	Boosters      map[string]time.Time `json:"boosters,omitempty"`
	Sector        *Coord               `json:"current_sector,omitempty"`
	OwnedPets     []string             `json:"owned_pets,omitempty"`
	ActivePetID   string               `json:"active_pet_id,omitempty"`
}

// FileRepo stores the save under dataDir/<key>.json.
type FileRepo struct {
	mu   sync.Mutex
	path string
	log  *log.Logger
}

func NewFileRepo(dataDir, key string, logger *log.Logger) (*FileRepo, error) {
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = log.Default()
	}
	return &FileRepo{
		path: filepath.Join(dataDir, key+".json"),
		log:  logger,
	}, nil
}

// Load reads the save file and merges it onto a fresh default state
// field by field. A missing or corrupt file is not fatal: whatever can
// be recovered is, and the rest defaults.
func (r *FileRepo) Load(ctx context.Context) (*State, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	st := NewState()

	b, err := os.ReadFile(r.path)
	if err != nil {
		if os.IsNotExist(err) {
			return st, nil
		}
		return nil, err
	}

	var blob saveBlob
	if err := json.Unmarshal(b, &blob); err != nil {
		r.log.Printf("save file %s unreadable, starting fresh: %v", r.path, err)
		return st, nil
	}

	if blob.CGT != nil && *blob.CGT >= 0 {
		st.CGT = *blob.CGT
	}
	if blob.TotalMined != nil && *blob.TotalMined >= 0 {
		st.TotalMined = *blob.TotalMined
	}
	if blob.PrestigeSeeds != nil && *blob.PrestigeSeeds >= 0 {
		st.PrestigeSeeds = *blob.PrestigeSeeds
	}
	// Merge level maps onto the known keys so renamed or removed upgrade
	// ids never resurrect.
	for id, lvl := range blob.Upgrades {
		if _, ok := st.Upgrades[id]; ok && lvl > 0 {
			st.Upgrades[id] = lvl
		}
	}
	for id, lvl := range blob.DroneUpgrades {
		if _, ok := st.DroneUpgrades[id]; ok && lvl > 0 {
			st.DroneUpgrades[id] = lvl
		}
	}
	if blob.Relics != nil {
		st.Relics = append([]string{}, blob.Relics...)
	}
	if blob.Boosters != nil {
		st.Boosters = blob.Boosters
	}
	if blob.Sector != nil {
		st.Sector = *blob.Sector
	}
	if blob.OwnedPets != nil {
		st.OwnedPets = append([]string{}, blob.OwnedPets...)
	}
	if blob.ActivePetID != "" && st.OwnsPet(blob.ActivePetID) {
		st.ActivePetID = blob.ActivePetID
	}
	return st, nil
}

// Save writes the whitelisted fields synchronously.
func (r *FileRepo) Save(ctx context.Context, st *State) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	blob := saveBlob{
		CGT:           &st.CGT,
		TotalMined:    &st.TotalMined,
		PrestigeSeeds: &st.PrestigeSeeds,
		Upgrades:      st.Upgrades,
		DroneUpgrades: st.DroneUpgrades,
		Relics:        st.Relics,
		Boosters:      st.Boosters,
		Sector:        &st.Sector,
		OwnedPets:     st.OwnedPets,
		ActivePetID:   st.ActivePetID,
	}
	b, err := json.MarshalIndent(blob, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(r.path, b, 0o644)
}

// Path returns the save file location; cmd/ops backs this directory up.
func (r *FileRepo) Path() string { return r.path }
