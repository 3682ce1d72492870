package handlers

import (
	"bytes"
	"errors"
	"net/http"
	"net/url"
	"time"

	"github.com/4dave/corralio/models"

	"github.com/emersion/go-ical"
	"github.com/gin-gonic/gin"
)

// Calendar serves the event as a single-VEVENT .ics file.
func (h *EventHandler) Calendar(c *gin.Context) {
	e, err := h.viewable(c)
	if errors.Is(err, errPrivate) {
		c.String(http.StatusForbidden, "This event is private")
		return
	}
	if err != nil {
		c.String(statusFor(err), http.StatusText(statusFor(err)))
		return
	}

	cal := ical.NewCalendar()
	cal.Props.SetText(ical.PropVersion, "2.0")
	cal.Props.SetText(ical.PropProductID, "-//corralio//EN")
	cal.Children = append(cal.Children, toICal(e, h.eventURL(c, e)))

	var buf bytes.Buffer
	if err := ical.NewEncoder(&buf).Encode(cal); err != nil {
		renderFailure(c, h.Demo, err)
		return
	}

	c.Header("Content-Disposition", `attachment; filename="event.ics"`)
	c.Data(http.StatusOK, "text/calendar; charset=utf-8", buf.Bytes())
}

func (h *EventHandler) eventURL(c *gin.Context, e *models.Event) string {
	scheme := "http"
	if isSecure(c) {
		scheme = "https"
	}
	return scheme + "://" + c.Request.Host + "/e/" + e.ShareToken
}

// toICal converts an event to a VEVENT component.
func toICal(e *models.Event, link string) *ical.Component {
	ve := ical.NewComponent(ical.CompEvent)
	ve.Props.SetText(ical.PropUID, e.ID)
	ve.Props.SetText(ical.PropSummary, e.Title)
	ve.Props.SetDateTime(ical.PropDateTimeStamp, time.Now().UTC())
	ve.Props.SetDateTime(ical.PropDateTimeStart, e.StartsAt.UTC())
	ve.Props.SetDateTime(ical.PropDateTimeEnd, e.EndOrDefault().UTC())
	if u, err := url.Parse(link); err == nil {
		ve.Props.SetURI(ical.PropURL, u)
	}

	if e.Description != "" {
		ve.Props.SetText(ical.PropDescription, e.Description)
	}
	if e.LocationText != "" {
		ve.Props.SetText(ical.PropLocation, e.LocationText)
	}
	if e.Status == models.EventClosed {
		ve.Props.SetText(ical.PropStatus, "CANCELLED")
	}
	return ve
}
