package store

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/tsali/retro-tv/internal/model"
)

type parentalDoc struct {
	PIN                string `json:"pin"`
	LockedChannels     []int  `json:"locked_channels"`
	AutoLockChannels   []int  `json:"auto_lock_channels"`
	AlwaysMuteChannels []int  `json:"always_mute_channels"`
}

// LoadParentalConfig parses the parental-control JSON document (section 6).
func LoadParentalConfig(path string) (model.ParentalPolicy, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return model.ParentalPolicy{}, fmt.Errorf("read parental config: %w", err)
	}
	var doc parentalDoc
	if err := json.Unmarshal(data, &doc); err != nil {
		return model.ParentalPolicy{}, fmt.Errorf("parse parental config: %w", err)
	}
	return model.ParentalPolicy{
		PIN:                doc.PIN,
		LockedChannels:     toSet(doc.LockedChannels),
		AutoLockChannels:   toSet(doc.AutoLockChannels),
		AlwaysMuteChannels: toSet(doc.AlwaysMuteChannels),
	}, nil
}

func toSet(nums []int) map[int]bool {
	set := make(map[int]bool, len(nums))
	for _, n := range nums {
		set[n] = true
	}
	return set
}
