package entity

import "time"

// Destinations is the per-platform URL bundle a code resolves to.
// Any field may be empty, but at least one must be set at creation time.
type Destinations struct {
	Desktop string `json:"desktop_url"`
	Android string `json:"android_url"`
	IOS     string `json:"ios_url"`
}

func (d Destinations) Empty() bool {
	return d.Desktop == "" && d.Android == "" && d.IOS == ""
}

type ShortLink struct {
	Code         string       `json:"code"`
	Destinations Destinations `json:"destinations"`
	CreatedAt    time.Time    `json:"created_at"`
	Clicks       int          `json:"clicks"`
}

// ClickEvent is one resolution of a short code. Append-only: events are
// never updated or deleted, the aggregate Clicks counter is reconciled
// against them.
type ClickEvent struct {
	ID           string    `json:"id"`
	Code         string    `json:"code"`
	DeviceType   string    `json:"device_type"`
	UserAgent    string    `json:"user_agent"`
	IPAddress    string    `json:"ip_address"`
	Referer      string    `json:"referer,omitempty"`
	PlatformHint string    `json:"platform_hint,omitempty"`
	Country      string    `json:"country,omitempty"`
	Timestamp    time.Time `json:"timestamp"`
}

type ShortenRequest struct {
	DesktopURL string `json:"desktop_url"`
	AndroidURL string `json:"android_url"`
	IOSURL     string `json:"ios_url"`
}

type ShortenResponse struct {
	Code         string       `json:"code"`
	ShortURL     string       `json:"short_url"`
	Destinations Destinations `json:"destinations"`
	CreatedAt    time.Time    `json:"created_at"`
}

type LinkAnalytics struct {
	Code         string       `json:"code"`
	TotalClicks  int          `json:"total_clicks"`
	DeviceStats  []DeviceStat `json:"device_stats"`
	RecentClicks []ClickEvent `json:"recent_clicks"`
}

type DeviceStat struct {
	DeviceType string `json:"device_type"`
	Clicks     int    `json:"clicks"`
}

type RecalculateResult struct {
	Updated int `json:"updated"`
}
