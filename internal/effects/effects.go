// Package effects wires the decorative behaviour of the page: smooth scrolling navigation,
// hover lift on feature cards and a click pulse on service items.
package effects

import (
	"strings"
	"time"

	"gitlab.com/dirk.krummacker/static-website/internal/ui"
)

// Selectors of the elements the effects attach to.
const (
	NavLinkSelector     = `.nav-menu a[href^="#"]`
	FeatureCardSelector = ".feature-card"
	ServiceItemSelector = ".service-item"
)

// PulseDuration is how long a clicked service item stays pressed.
const PulseDuration = 150 * time.Millisecond

// AfterFunc schedules f to run after d.
type AfterFunc func(d time.Duration, f func())

// RealTimer runs f on its own goroutine after d.
func RealTimer(d time.Duration, f func()) {
	time.AfterFunc(d, f)
}

// SmoothScroll makes every in-page navigation link scroll its target into view. Links whose
// target does not exist do nothing. It returns the number of links wired.
func SmoothScroll(doc ui.Document) int {
	links := doc.QueryAll(NavLinkSelector)
	for _, link := range links {
		link.OnClick(func() {
			href := link.Attribute("href")
			if !strings.HasPrefix(href, "#") || len(href) < 2 {
				return
			}
			if target := doc.Query(href); target != nil {
				target.ScrollIntoView()
			}
		})
	}
	return len(links)
}

// HoverLift raises feature cards by five pixels while the pointer is over them.
func HoverLift(doc ui.Document) int {
	cards := doc.QueryAll(FeatureCardSelector)
	for _, card := range cards {
		card.OnMouseEnter(func() { card.SetStyle("transform", "translateY(-5px)") })
		card.OnMouseLeave(func() { card.SetStyle("transform", "translateY(0)") })
	}
	return len(cards)
}

// ClickPulse shrinks a clicked service item slightly and restores it after PulseDuration.
func ClickPulse(doc ui.Document, after AfterFunc) int {
	if after == nil {
		after = RealTimer
	}
	items := doc.QueryAll(ServiceItemSelector)
	for _, item := range items {
		item.OnClick(func() {
			item.SetStyle("transform", "scale(0.98)")
			after(PulseDuration, func() { item.SetStyle("transform", "scale(1)") })
		})
	}
	return len(items)
}
