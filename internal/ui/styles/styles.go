// Package styles contains Lip Gloss style definitions.
package styles

import "github.com/charmbracelet/lipgloss"

var (
	// Text hierarchy
	TextPrimaryColor     = lipgloss.AdaptiveColor{Light: "#2D3436", Dark: "#CCCCCC"}
	TextSecondaryColor   = lipgloss.AdaptiveColor{Light: "#555555", Dark: "#BBBBBB"}
	TextMutedColor       = lipgloss.AdaptiveColor{Light: "#999999", Dark: "#696969"} // Hints, help text, footers
	TextDescriptionColor = lipgloss.AdaptiveColor{Light: "#666666", Dark: "#999999"}

	BorderDefaultColor        = lipgloss.AdaptiveColor{Light: "#B2BEC3", Dark: "#696969"}
	BorderHighlightFocusColor = lipgloss.AdaptiveColor{Light: "#54A0FF", Dark: "#54A0FF"}

	StatusSuccessColor = lipgloss.AdaptiveColor{Light: "#43BF6D", Dark: "#73F59F"}
	StatusWarningColor = lipgloss.AdaptiveColor{Light: "#FECA57", Dark: "#FECA57"}
	StatusErrorColor   = lipgloss.AdaptiveColor{Light: "#FF6B6B", Dark: "#FF8787"}

	ButtonTextColor             = lipgloss.AdaptiveColor{Light: "#FFFFFF", Dark: "#FFFFFF"}
	ButtonPrimaryBgColor        = lipgloss.AdaptiveColor{Light: "#1A5276", Dark: "#1A5276"}
	ButtonPrimaryFocusBgColor   = lipgloss.AdaptiveColor{Light: "#3498DB", Dark: "#3498DB"}
	ButtonSecondaryBgColor      = lipgloss.AdaptiveColor{Light: "#2D3436", Dark: "#2D3436"}
	ButtonSecondaryFocusBgColor = lipgloss.AdaptiveColor{Light: "#636E72", Dark: "#636E72"}
	ButtonPressedBgColor        = lipgloss.AdaptiveColor{Light: "#1E8449", Dark: "#27AE60"}
	ButtonArmedBgColor          = lipgloss.AdaptiveColor{Light: "#B9770E", Dark: "#F39C12"}
	ButtonDisabledBgColor       = lipgloss.AdaptiveColor{Light: "#2D2D2D", Dark: "#2D2D2D"}

	OverlayTitleColor  = lipgloss.AdaptiveColor{Light: "#2D3436", Dark: "#C9C9C9"}
	OverlayBorderColor = lipgloss.AdaptiveColor{Light: "#B2BEC3", Dark: "#8C8C8C"}

	ToastBorderSuccessColor = StatusSuccessColor
	ToastBorderErrorColor   = StatusErrorColor
	ToastBorderInfoColor    = lipgloss.AdaptiveColor{Light: "#54A0FF", Dark: "#54A0FF"}
	ToastBorderWarnColor    = StatusWarningColor

	baseButtonStyle = lipgloss.NewStyle().Padding(0, 2).Bold(true).Foreground(ButtonTextColor)

	PrimaryButtonStyle        = baseButtonStyle.Background(ButtonPrimaryBgColor)
	PrimaryButtonFocusedStyle = baseButtonStyle.Background(ButtonPrimaryFocusBgColor).Underline(true).UnderlineSpaces(true)

	SecondaryButtonStyle        = baseButtonStyle.Background(ButtonSecondaryBgColor)
	SecondaryButtonFocusedStyle = baseButtonStyle.Background(ButtonSecondaryFocusBgColor).Underline(true).UnderlineSpaces(true)

	// PressedButtonStyle acknowledges a completed save for a short moment.
	PressedButtonStyle = baseButtonStyle.Background(ButtonPressedBgColor)
	// ArmedButtonStyle marks Save TS while a press is being held.
	ArmedButtonStyle    = baseButtonStyle.Background(ButtonArmedBgColor)
	DisabledButtonStyle = baseButtonStyle.Background(ButtonDisabledBgColor).Foreground(TextMutedColor)

	StatusBarStyle = lipgloss.NewStyle().Foreground(TextSecondaryColor).Padding(0, 1)
	HintStyle      = lipgloss.NewStyle().Foreground(TextMutedColor)
	ErrorTextStyle = lipgloss.NewStyle().Foreground(StatusErrorColor)
	CursorStyle    = lipgloss.NewStyle().Bold(true).Foreground(BorderHighlightFocusColor)
)
