package storage

func (s *Storage) AddCommandToHistory(guildID string, rec CommandHistoryRecord) error {
	record, err := s.getOrCreateGuildRecord(guildID)
	if err != nil {
		return err
	}

	record.CommandsHistory = append(record.CommandsHistory, rec)
	if len(record.CommandsHistory) > commandHistoryLimit {
		record.CommandsHistory = record.CommandsHistory[len(record.CommandsHistory)-commandHistoryLimit:]
	}

	s.ds.Add(guildID, record)
	return nil
}

func (s *Storage) CommandsHistory(guildID string) ([]CommandHistoryRecord, error) {
	record, err := s.getOrCreateGuildRecord(guildID)
	if err != nil {
		return nil, err
	}
	return record.CommandsHistory, nil
}

func (s *Storage) AddTrackToHistory(guildID string, rec TrackHistoryRecord) error {
	record, err := s.getOrCreateGuildRecord(guildID)
	if err != nil {
		return err
	}

	record.TracksHistory = append(record.TracksHistory, rec)
	if len(record.TracksHistory) > tracksHistoryLimit {
		record.TracksHistory = record.TracksHistory[len(record.TracksHistory)-tracksHistoryLimit:]
	}

	s.ds.Add(guildID, record)
	return nil
}

func (s *Storage) TracksHistory(guildID string) ([]TrackHistoryRecord, error) {
	record, err := s.getOrCreateGuildRecord(guildID)
	if err != nil {
		return nil, err
	}
	return record.TracksHistory, nil
}
