package discord

import (
	"fmt"
	"sort"
	"time"

	"github.com/bwmarrin/discordgo"
	"go.uber.org/zap"
)

type MessageData struct {
	Content string     `json:"Content,omitempty"`
	Embed   *EmbedData `json:"Embed,omitempty"`
}

type EmbedData struct {
	Title       string `json:"Title,omitempty"`
	Description string `json:"Description,omitempty"`
	URL         string `json:"Url,omitempty"`
	Color       string `json:"Color,omitempty"`
	Footer      Footer `json:"Footer,omitempty"`
	Image       string `json:"Image,omitempty"`
	Thumbnail   string `json:"Thumbnail,omitempty"`
}

type Footer struct {
	Text    string `json:"Text,omitempty"`
	IconURL string `json:"Icon_url,omitempty"`
}

// SendTimed sends msg and deletes it after timeout.
func SendTimed(session Session, logger *zap.SugaredLogger, channelID string, msg *discordgo.MessageSend, timeout time.Duration) (*discordgo.Message, error) {
	sent, err := session.ChannelMessageSendComplex(channelID, msg)
	if err != nil {
		return nil, err
	}

	time.AfterFunc(timeout, func() {
		err := session.ChannelMessageDelete(channelID, sent.ID)
		if err != nil {
			logger.Warnf("Failed to delete message %s: %v", sent.ID, err)
		}
	})

	return sent, nil
}

func CreateMessageSend(message MessageData) *discordgo.MessageSend {
	mess := &discordgo.MessageSend{Content: message.Content}
	if embed := CreateEmbed(message.Embed); embed != nil {
		mess.Embeds = []*discordgo.MessageEmbed{embed}
	}
	return mess
}

func CreateEmbed(message *EmbedData) *discordgo.MessageEmbed {
	if message == nil {
		return nil
	}

	embed := &discordgo.MessageEmbed{
		Title:       message.Title,
		Description: message.Description,
		URL:         message.URL,
	}

	if message.Color != "" {
		embed.Color = parseHexColor(message.Color)
	}
	if message.Footer.Text != "" || message.Footer.IconURL != "" {
		embed.Footer = &discordgo.MessageEmbedFooter{
			Text:    message.Footer.Text,
			IconURL: message.Footer.IconURL,
		}
	}
	if message.Thumbnail != "" {
		embed.Thumbnail = &discordgo.MessageEmbedThumbnail{URL: message.Thumbnail}
	}
	if message.Image != "" {
		embed.Image = &discordgo.MessageEmbedImage{URL: message.Image}
	}

	return embed
}

func parseHexColor(color string) int {
	var parsedColor int
	_, err := fmt.Sscanf(color, "0x%x", &parsedColor)
	if err != nil {
		return 0xFFFFFF // Default to white if parsing fails
	}
	return parsedColor
}

var permissionNames = map[int64]string{
	discordgo.PermissionAdministrator:  "Administrator",
	discordgo.PermissionManageServer:   "Manage Server",
	discordgo.PermissionManageMessages: "Manage Messages",
	discordgo.PermissionKickMembers:    "Kick Members",
	discordgo.PermissionBanMembers:     "Ban Members",
	discordgo.PermissionManageRoles:    "Manage Roles",
	discordgo.PermissionManageChannels: "Manage Channels",
}

// MissingPermissions names the bits of required that are not set in has. Administrator implies every permission.
func MissingPermissions(required, has int64) []string {
	if has&discordgo.PermissionAdministrator != 0 {
		return nil
	}

	var missing []string
	for bit, name := range permissionNames {
		if required&bit != 0 && has&bit == 0 {
			missing = append(missing, name)
		}
	}
	if rest := required &^ has &^ knownPermissions(); rest != 0 {
		missing = append(missing, fmt.Sprintf("0x%x", rest))
	}
	sort.Strings(missing)
	return missing
}

func knownPermissions() int64 {
	var all int64
	for bit := range permissionNames {
		all |= bit
	}
	return all
}
