package storage

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/keshon/datastore"
)

const (
	commandHistoryLimit int = 20
	tracksHistoryLimit  int = 12
)

// Storage persists per-guild bot settings in a JSON-file datastore.
type Storage struct {
	ds *datastore.DataStore
}

type CommandHistoryRecord struct {
	ChannelID   string    `json:"channel_id"`
	ChannelName string    `json:"channel_name"`
	GuildName   string    `json:"guild_name"`
	UserID      string    `json:"user_id"`
	Username    string    `json:"username"`
	Command     string    `json:"command"`
	Param       string    `json:"param"`
	Datetime    time.Time `json:"datetime"`
}

type TrackHistoryRecord struct {
	URL      string        `json:"url"`
	Title    string        `json:"title"`
	Duration time.Duration `json:"duration"`
	UserID   string        `json:"user_id"`
	PlayedAt time.Time     `json:"played_at"`
}

// Record is everything stored for one guild.
type Record struct {
	AllowedChannels  []string               `json:"allowed_channels"`
	BlacklistedRoles []string               `json:"blacklisted_roles"`
	CommandsHistory  []CommandHistoryRecord `json:"cmd_history"`
	TracksHistory    []TrackHistoryRecord   `json:"tracks_history"`
}

func New(filePath string) (*Storage, error) {
	ds, err := datastore.New(filePath)
	if err != nil {
		return nil, err
	}
	return &Storage{ds: ds}, nil
}

func (s *Storage) Close() error {
	return s.ds.Close()
}

// getOrCreateGuildRecord loads the guild record, creating an empty one on
// first access.
func (s *Storage) getOrCreateGuildRecord(guildID string) (*Record, error) {
	data, exists := s.ds.Get(guildID)
	if !exists {
		newRecord := &Record{}
		s.ds.Add(guildID, newRecord)
		return newRecord, nil
	}

	jsonData, err := json.Marshal(data)
	if err != nil {
		return nil, fmt.Errorf("error marshalling data: %w", err)
	}

	var record Record
	if err := json.Unmarshal(jsonData, &record); err != nil {
		return nil, fmt.Errorf("error unmarshalling to *Record: %w", err)
	}

	return &record, nil
}
