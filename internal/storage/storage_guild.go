package storage

import "fmt"

func (s *Storage) AddAllowedChannel(guildID, channelID string) error {
	record, err := s.getOrCreateGuildRecord(guildID)
	if err != nil {
		return err
	}

	for _, ch := range record.AllowedChannels {
		if ch == channelID {
			return fmt.Errorf("channel already in allow list")
		}
	}

	record.AllowedChannels = append(record.AllowedChannels, channelID)
	s.ds.Add(guildID, record)
	return nil
}

func (s *Storage) RemoveAllowedChannel(guildID, channelID string) error {
	record, err := s.getOrCreateGuildRecord(guildID)
	if err != nil {
		return err
	}

	updated := make([]string, 0, len(record.AllowedChannels))
	found := false
	for _, ch := range record.AllowedChannels {
		if ch == channelID {
			found = true
			continue
		}
		updated = append(updated, ch)
	}
	if !found {
		return fmt.Errorf("channel not in allow list")
	}

	record.AllowedChannels = updated
	s.ds.Add(guildID, record)
	return nil
}

// AllowedChannels returns the command channel allow list. An empty list
// means all channels are allowed.
func (s *Storage) AllowedChannels(guildID string) ([]string, error) {
	record, err := s.getOrCreateGuildRecord(guildID)
	if err != nil {
		return nil, err
	}
	return record.AllowedChannels, nil
}

func (s *Storage) AddBlacklistedRole(guildID, roleID string) error {
	record, err := s.getOrCreateGuildRecord(guildID)
	if err != nil {
		return err
	}

	for _, r := range record.BlacklistedRoles {
		if r == roleID {
			return fmt.Errorf("role already blacklisted")
		}
	}

	record.BlacklistedRoles = append(record.BlacklistedRoles, roleID)
	s.ds.Add(guildID, record)
	return nil
}

func (s *Storage) RemoveBlacklistedRole(guildID, roleID string) error {
	record, err := s.getOrCreateGuildRecord(guildID)
	if err != nil {
		return err
	}

	updated := make([]string, 0, len(record.BlacklistedRoles))
	found := false
	for _, r := range record.BlacklistedRoles {
		if r == roleID {
			found = true
			continue
		}
		updated = append(updated, r)
	}
	if !found {
		return fmt.Errorf("role not blacklisted")
	}

	record.BlacklistedRoles = updated
	s.ds.Add(guildID, record)
	return nil
}

func (s *Storage) BlacklistedRoles(guildID string) ([]string, error) {
	record, err := s.getOrCreateGuildRecord(guildID)
	if err != nil {
		return nil, err
	}
	return record.BlacklistedRoles, nil
}
