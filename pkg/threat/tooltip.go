package threat

import (
	"fmt"
	"html"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

const tooltipTemplate = `<div style="
    background:rgba(10,14,26,0.98);
    padding:14px 18px;
    border-radius:10px;
    border:1px solid %[1]s;
    color:#e8eaed;
    font-family:-apple-system,BlinkMacSystemFont,'Segoe UI',sans-serif;
    font-size:13px;
    backdrop-filter:blur(12px);
    box-shadow:0 8px 32px rgba(0,0,0,0.5);
    min-width:160px;
  ">
    <div style="color:%[1]s;font-weight:700;font-size:15px;margin-bottom:6px;letter-spacing:0.5px;">
      %[2]s
    </div>
    <div style="color:#9ca3af;font-size:12px;">%[3]s</div>
    <div style="margin-top:8px;padding-top:8px;border-top:1px solid rgba(255,255,255,0.1);">
      <div style="display:flex;justify-content:space-between;margin-bottom:4px;">
        <span style="color:#9ca3af;">Level</span>
        <span style="color:%[1]s;font-weight:600;">%[4]s</span>
      </div>
      <div style="display:flex;justify-content:space-between;">
        <span style="color:#9ca3af;">Incidents</span>
        <span style="color:#e8eaed;font-weight:600;">%[5]s</span>
      </div>
    </div>
  </div>`

// FormatCount renders n with English thousands separators.
func FormatCount(n int) string {
	return message.NewPrinter(language.English).Sprintf("%d", n)
}

// TooltipHTML renders the hover card for a point. Every caller-supplied string
// is escaped before it reaches the markup; the color comes from the typed scheme.
func TooltipHTML(p Point, totalCount int, scheme ColorScheme) string {
	title := p.Label
	if title == "" {
		title = p.City
	}
	if title == "" {
		title = "Unknown"
	}
	return fmt.Sprintf(tooltipTemplate,
		HexColor(scheme.Color(p.Level)),
		html.EscapeString(title),
		html.EscapeString(p.Country),
		html.EscapeString(strings.ToUpper(p.Level.String())),
		FormatCount(totalCount),
	)
}
