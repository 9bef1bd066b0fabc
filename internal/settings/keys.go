package settings

// Parameter keys in the configuration store.
const (
	KeyAgentID        = "assistloop.agent_id"
	KeyEnabled        = "assistloop.enabled"
	KeyPosition       = "assistloop.position"
	KeyWidgetURL      = "assistloop.widget_url"
	KeyShowOnAllPages = "assistloop.show_on_all_pages"
)

// KeyPrefix is shared by every widget parameter.
const KeyPrefix = "assistloop."

// DefaultWidgetURL is the vendor CDN script used by the render path when no
// URL is configured.
const DefaultWidgetURL = "https://assistloop.ai/assistloop-widget.js"

// Button positions.
const (
	PositionRight = "right"
	PositionLeft  = "left"
)

// Stored boolean literals. Reads compare against FlagTrue exactly.
const (
	FlagTrue  = "True"
	FlagFalse = "False"
)

// Choice is one option of a selection field.
type Choice struct {
	Value string `json:"value"`
	Label string `json:"label"`
}

// Positions are the selectable button positions, in display order.
var Positions = []Choice{
	{Value: PositionRight, Label: "Bottom Right"},
	{Value: PositionLeft, Label: "Bottom Left"},
}

// Field describes one admin form control bound to a parameter key.
type Field struct {
	Name    string   `json:"name"`
	Key     string   `json:"key"`
	Type    string   `json:"type"` // "char" | "boolean" | "selection"
	Label   string   `json:"label"`
	Help    string   `json:"help"`
	Choices []Choice `json:"choices,omitempty"`
}

// Fields lists the admin form controls in display order.
var Fields = []Field{
	{
		Name:  "agent_id",
		Key:   KeyAgentID,
		Type:  "char",
		Label: "Agent ID",
		Help: "Enter the Agent UUID from your AssistLoop dashboard. " +
			"This identifies which AI agent will power the chat widget.",
	},
	{
		Name:  "enabled",
		Key:   KeyEnabled,
		Type:  "boolean",
		Label: "Enable Chat Widget",
		Help: "Enable or disable the AssistLoop chat widget on your website. " +
			"When disabled, the widget will not appear on any pages.",
	},
	{
		Name:    "position",
		Key:     KeyPosition,
		Type:    "selection",
		Label:   "Widget Position",
		Help:    "Choose where the chat widget button appears on your website.",
		Choices: Positions,
	},
	{
		Name:  "widget_url",
		Key:   KeyWidgetURL,
		Type:  "char",
		Label: "Widget Script URL",
		Help: "Custom URL for the AssistLoop widget script. " +
			"Leave empty to use the default CDN URL.",
	},
	{
		Name:  "show_on_all_pages",
		Key:   KeyShowOnAllPages,
		Type:  "boolean",
		Label: "Show on All Pages",
		Help: "When enabled, the widget appears on all website pages. " +
			"When disabled, you can control visibility per page.",
	},
}
