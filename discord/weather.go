package discord

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/kingdom-of-science/senku-bot/bmkg"
	"github.com/kingdom-of-science/senku-bot/data"
	"github.com/kingdom-of-science/senku-bot/metrics"
	"github.com/kingdom-of-science/senku-bot/types"
)

const (
	weatherTimeout    = 15 * time.Second
	weatherColor      = 0x00BFFF
	nextForecasts     = 4
	defaultVisibility = "> 10 km"
	footerIcon        = "https://api-apps.bmkg.go.id/storage/icon/cuaca/cerah-pm.svg"
	footerText        = "Data source: BMKG | Kingdom of Science"
)

func (d *Client) weatherCommand(ctx context.Context, req *request) string {
	if len(req.args) == 0 {
		return d.replyOutcome(req, "🌦 Please provide a city name, e.g. `!weather Jakarta`", types.OutcomeBadRequest)
	}

	city := strings.Join(req.args, " ")
	region, ok := d.store.FindRegion(city)
	if !ok {
		return d.replyOutcome(req, fmt.Sprintf("❌ Sorry, I can't find \"%s\" in my region database.", city), types.OutcomeNotFound)
	}

	if d.weather == nil {
		return d.replyOutcome(req, "⚠️ Failed to fetch weather data from BMKG.", types.OutcomeUpstreamErr)
	}

	ctx, cancel := context.WithTimeout(ctx, weatherTimeout)
	defer cancel()

	resp, err := d.weather.Forecast(ctx, region.Code)
	if err != nil {
		d.logger.Error("weather fetch error", "error", err.Error(), "region", region.Code)
		metrics.WeatherFetchFail.Add(1)
		return d.replyOutcome(req, "⚠️ Failed to fetch weather data from BMKG.", types.OutcomeUpstreamErr)
	}
	metrics.WeatherFetchSuccess.Add(1)

	upcoming := resp.Upcoming(nextForecasts + 1)
	if len(upcoming) == 0 {
		return d.replyOutcome(req, fmt.Sprintf("⚠️ No weather data found for %s.", city), types.OutcomeNotFound)
	}

	embed := weatherEmbed(region, upcoming[0], upcoming[1:], time.Now())
	if _, err := d.sender.ChannelMessageSendEmbed(req.msg.ChannelID, embed); err != nil {
		d.logger.Error("error sending weather embed", "error", err.Error(), "channelID", req.msg.ChannelID)
		return types.OutcomeSendErr
	}
	metrics.DiscordMessageSent.Add(1)
	return types.OutcomeOK
}

// weatherEmbed renders the current forecast and the ones after it.
func weatherEmbed(region data.Region, current bmkg.Forecast, next []bmkg.Forecast, now time.Time) *discordgo.MessageEmbed {
	visibility := current.VisibilityText
	if visibility == "" {
		visibility = defaultVisibility
	}

	fields := []*discordgo.MessageEmbedField{
		{Name: "🌡️ Temperature", Value: number(current.Temperature) + "°C", Inline: true},
		{Name: "💧 Humidity", Value: number(current.Humidity) + "%", Inline: true},
		{Name: "🌬️ Wind", Value: fmt.Sprintf("%s m/s (%s)", number(current.WindSpeed), current.WindDirection), Inline: true},
		{Name: "🕒 Forecast Time", Value: localDateTime(current.LocalTime()), Inline: false},
		{Name: "📈 Visibility", Value: visibility, Inline: true},
		{Name: "📅 Data Updated", Value: localDateTime(current.AnalysisTime()), Inline: true},
	}

	// discord rejects fields with an empty value
	if len(next) > 0 {
		lines := make([]string, 0, len(next))
		for _, f := range next {
			lines = append(lines, fmt.Sprintf("🕒 **%s** — %s (%s°C, 💧%s%%)",
				localClock(f.LocalTime()), f.Description, number(f.Temperature), number(f.Humidity)))
		}
		fields = append(fields, &discordgo.MessageEmbedField{
			Name:  fmt.Sprintf("🔮 Next %d Forecasts", len(next)),
			Value: strings.Join(lines, "\n"),
		})
	}

	embed := &discordgo.MessageEmbed{
		Color:       weatherColor,
		Title:       fmt.Sprintf("🌤 Weather for %s, %s", region.DisplayName(), region.Province),
		Description: fmt.Sprintf("**%s (%s)**", current.DescriptionEN, current.Description),
		Fields:      fields,
		Footer: &discordgo.MessageEmbedFooter{
			Text:    footerText,
			IconURL: footerIcon,
		},
		Timestamp: now.Format(time.RFC3339),
	}
	if icon := current.IconURL(); icon != "" {
		embed.Thumbnail = &discordgo.MessageEmbedThumbnail{URL: icon}
	}
	return embed
}

func number(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// localDateTime formats t the way Indonesian locales print dates.
func localDateTime(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.Format("2/1/2006, 15.04.05")
}

func localClock(t time.Time) string {
	if t.IsZero() {
		return "--.--"
	}
	return t.Format("15.04")
}
