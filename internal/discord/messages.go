package discord

import (
	"go.uber.org/zap"
)

const maxBulkDelete = 100

type ClearMessagesOnChannelOptions struct {
	Blacklist []string // User ids to exclude
	Whitelist []string // User ids to include
	Before    string   // Message id to fetch messages before
	After     string   // Message id to fetch messages after
	Limit     int
}

// ClearMessagesOnChannel fetches up to options.Limit recent messages, filters
// them by author and bulk deletes the rest. Discord caps both calls at 100.
func ClearMessagesOnChannel(session Session, logger *zap.SugaredLogger, channelID string, options *ClearMessagesOnChannelOptions) (int, error) {
	if options == nil {
		options = &ClearMessagesOnChannelOptions{}
	}

	limit := options.Limit
	if limit <= 0 || limit > maxBulkDelete {
		limit = maxBulkDelete
	}

	messages, err := session.ChannelMessages(channelID, limit, options.Before, options.After, "")
	if err != nil {
		return 0, err
	}

	blacklistMap := make(map[string]struct{})
	for _, id := range options.Blacklist {
		blacklistMap[id] = struct{}{}
	}

	whitelistMap := make(map[string]struct{})
	for _, id := range options.Whitelist {
		whitelistMap[id] = struct{}{}
	}

	var messagesToDelete []string
	for _, msg := range messages {
		var authorID string
		if msg.Author != nil {
			authorID = msg.Author.ID
		}

		if _, blacklisted := blacklistMap[authorID]; blacklisted {
			continue
		}

		if len(whitelistMap) > 0 {
			if _, whitelisted := whitelistMap[authorID]; !whitelisted {
				continue
			}
		}

		messagesToDelete = append(messagesToDelete, msg.ID)
	}

	if len(messagesToDelete) == 0 {
		return 0, nil
	}

	if err := session.ChannelMessagesBulkDelete(channelID, messagesToDelete); err != nil {
		logger.Warnf("Failed to delete messages in channel %s: %v", channelID, err)
		return 0, err
	}

	return len(messagesToDelete), nil
}
