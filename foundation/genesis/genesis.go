// Package genesis maintains access to the pool genesis file.
package genesis

import (
	"encoding/json"
	"fmt"
	"os"
	"time"
)

// Genesis represents the genesis file.
type Genesis struct {
	Date           time.Time         `json:"date"`
	ChainID        uint16            `json:"chain_id"`        // Unique id for this pool so signatures can't be replayed on another.
	Team           string            `json:"team"`            // Account allowed to deposit rewards.
	RewardSchedule string            `json:"reward_schedule"` // Cron expression for scheduled reward injections, empty to disable.
	RewardAmount   string            `json:"reward_amount"`   // Ether injected on every scheduled tick.
	Deposits       map[string]string `json:"deposits"`        // Account to ether deposited when the pool starts.
}

// =============================================================================

// Load opens and consumes the genesis file.
func Load(path string) (Genesis, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return Genesis{}, fmt.Errorf("reading genesis: %w", err)
	}

	var genesis Genesis
	if err := json.Unmarshal(content, &genesis); err != nil {
		return Genesis{}, fmt.Errorf("decoding genesis: %w", err)
	}

	return genesis, nil
}
