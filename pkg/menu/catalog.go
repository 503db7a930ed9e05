package menu

import (
	"fmt"
	"strings"
)

// ScreenID names one renderable chat menu state.
type ScreenID string

const (
	ScreenMain    ScreenID = "main"
	ScreenHelp    ScreenID = "help"
	ScreenBalance ScreenID = "balance"
	ScreenSupport ScreenID = "support"
)

// ParseScreenID maps a raw button payload onto the closed screen set.
func ParseScreenID(s string) (ScreenID, bool) {
	switch ScreenID(s) {
	case ScreenMain, ScreenHelp, ScreenBalance, ScreenSupport:
		return ScreenID(s), true
	}
	return "", false
}

// Button is either a navigation button (Target set) or a launch button
// (URL set). Exactly one of the two is set.
type Button struct {
	Label  string
	Target ScreenID
	URL    string
}

func NavButton(label string, target ScreenID) Button {
	return Button{Label: label, Target: target}
}

func LaunchButton(label, url string) Button {
	return Button{Label: label, URL: url}
}

func (b Button) IsLaunch() bool {
	return b.URL != ""
}

// Screen is an immutable menu definition: a text template plus ordered
// button rows. The {name} placeholder substitutes the requester's display
// name.
type Screen struct {
	ID      ScreenID
	Text    string
	Buttons [][]Button
}

// Rendered is a screen ready to send: final text and button layout.
type Rendered struct {
	Text    string
	Buttons [][]Button
}

const namePlaceholder = "{name}"

// defaultDisplayName stands in when the requester has no usable name.
const defaultDisplayName = "friend"

// Catalog holds every screen. Screens are defined at startup and never
// mutated afterwards.
type Catalog struct {
	screens map[ScreenID]Screen
}

// NewCatalog builds the full menu set around the mini-app launch URL and
// verifies it. A dangling navigation target is a configuration error, not
// something to discover at runtime.
func NewCatalog(gameURL string) (*Catalog, error) {
	return newCatalog(defaultScreens(gameURL))
}

func newCatalog(screens []Screen) (*Catalog, error) {
	c := &Catalog{screens: make(map[ScreenID]Screen, len(screens))}
	for _, s := range screens {
		c.screens[s.ID] = s
	}
	if err := c.validate(); err != nil {
		return nil, err
	}
	return c, nil
}

func (c *Catalog) Has(id ScreenID) bool {
	_, ok := c.screens[id]
	return ok
}

// Render produces the outgoing message for a screen. It is pure: missing
// screens are ruled out by validate at construction, so lookup cannot fail
// for any ScreenID the router resolves through Has.
func (c *Catalog) Render(id ScreenID, displayName string) Rendered {
	s := c.screens[id]
	name := strings.TrimSpace(displayName)
	if name == "" {
		name = defaultDisplayName
	}
	return Rendered{
		Text:    strings.ReplaceAll(s.Text, namePlaceholder, name),
		Buttons: s.Buttons,
	}
}

func (c *Catalog) validate() error {
	for id, s := range c.screens {
		for _, row := range s.Buttons {
			for _, b := range row {
				if b.IsLaunch() {
					continue
				}
				if !c.Has(b.Target) {
					return fmt.Errorf("screen %q: navigation button %q targets unknown screen %q", id, b.Label, b.Target)
				}
			}
		}
	}
	return nil
}

func defaultScreens(gameURL string) []Screen {
	return []Screen{
		{
			ID: ScreenMain,
			Text: "What can this bot do?\n\n" +
				"Hello, {name}! Thank you for choosing us!\n\n" +
				"This bot hands out gifts to our customers.\n\n" +
				"To claim a gift, press \"Start the game\" and play a short round!\n\n" +
				"Ready to start?",
			Buttons: [][]Button{
				{LaunchButton("Start the game", gameURL)},
				{NavButton("Help", ScreenHelp), NavButton("Balance", ScreenBalance)},
				{NavButton("Support", ScreenSupport)},
			},
		},
		{
			ID: ScreenHelp,
			Text: "GAME RULES\n\n" +
				"How to play:\n" +
				"- Guess the five-letter word in six tries\n" +
				"- Colors are hints:\n" +
				"  Green: the letter is in the right spot\n" +
				"  Yellow: the letter is in the word, wrong spot\n" +
				"  Gray: the letter is not in the word\n\n" +
				"Bonuses:\n" +
				"- Win: +50 bonus points\n" +
				"- Participation: +10 bonus points\n" +
				"- Spend bonus points in our club!\n\n" +
				"Sign-in:\n" +
				"- Enter your club card number\n" +
				"- Enter your birth date\n" +
				"- Progress is saved automatically",
			Buttons: [][]Button{
				{LaunchButton("Play now!", gameURL)},
				{NavButton("Balance", ScreenBalance)},
			},
		},
		{
			ID: ScreenBalance,
			Text: "Balance check\n\n" +
				"To see your current balance:\n" +
				"1. Open the game\n" +
				"2. Sign in with your card number\n" +
				"3. The balance is shown in the app\n\n" +
				"Play and earn bonus points!",
			Buttons: [][]Button{
				{LaunchButton("Open the game", gameURL)},
			},
		},
		{
			ID: ScreenSupport,
			Text: "Technical support\n\n" +
				"Contacts:\n" +
				"- Email: support@club.com\n" +
				"- Hours: Mon-Fri 9:00-18:00\n\n" +
				"Common issues:\n" +
				"- Sign-in not working? Check your card number\n" +
				"- Bonus points missing? Try signing in again\n" +
				"- Game not loading? Restart the bot\n\n" +
				"Or just write to us here!",
			Buttons: [][]Button{
				{LaunchButton("Open the game", gameURL)},
			},
		},
	}
}
