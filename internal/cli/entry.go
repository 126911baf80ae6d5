package cli

import (
	"fmt"
	"strings"

	"github.com/dmitrijs2005/loadlog/internal/models"
)

// promptEntry walks through the editable fields of e. Empty answers keep the
// current value; "-" clears an optional field. In minimal mode only the
// source, intensity and notes are asked for.
func (a *App) promptEntry(e models.Entry, minimal bool) (models.Entry, error) {
	var err error
	var s string

	if s, err = a.ask("Source (porn, fantasy, partner, memory, media, other)", string(e.SourceType)); err != nil {
		return e, err
	}
	e.SourceType = models.SourceType(s)
	if e.SourceLabel, err = a.ask("Source label", e.SourceLabel); err != nil {
		return e, err
	}
	if s, err = a.ask("Solo or partnered", string(e.SoloOrPartner)); err != nil {
		return e, err
	}
	e.SoloOrPartner = models.SoloOrPartner(s)

	if e.Intensity, err = a.number("Intensity 1-5 (0 for none)", e.Intensity); err != nil {
		return e, err
	}
	if !minimal {
		if e, err = a.promptDetails(e); err != nil {
			return e, err
		}
	}

	notes, err := GetMultiline(a.reader, "Notes (empty keeps the current notes)", a.out)
	if err != nil {
		return e, err
	}
	if notes != "" {
		e.Notes = notes
	}

	return e, nil
}

func (a *App) promptDetails(e models.Entry) (models.Entry, error) {
	var err error
	var s string

	if e.MoodBefore, err = a.number("Mood before 1-5 (0 for none)", e.MoodBefore); err != nil {
		return e, err
	}
	if e.MoodAfter, err = a.number("Mood after 1-5 (0 for none)", e.MoodAfter); err != nil {
		return e, err
	}

	if s, err = a.ask("Load size (small, medium, big, mythic)", string(e.LoadSize)); err != nil {
		return e, err
	}
	e.LoadSize = models.LoadSize(s)
	if s, err = a.ask("Cleanup (quick, standard, full_reset)", string(e.Cleanup)); err != nil {
		return e, err
	}
	e.Cleanup = models.Cleanup(s)
	if e.SoloOrPartner == models.Partnered {
		if s, err = a.ask("Protection (none, condom, other)", string(e.ProtectionUsed)); err != nil {
			return e, err
		}
		e.ProtectionUsed = models.Protection(s)
	} else {
		e.ProtectionUsed = ""
	}
	if s, err = a.ask("Privacy (normal, extra_private)", string(e.PrivacyLevel)); err != nil {
		return e, err
	}
	e.PrivacyLevel = models.PrivacyLevel(s)

	if s, err = a.ask("Tags, comma separated", strings.Join(e.Tags, ",")); err != nil {
		return e, err
	}
	e.Tags = splitTags(s)

	if e.RefractoryNotes, err = a.ask("Refractory notes", e.RefractoryNotes); err != nil {
		return e, err
	}
	if e.BodyNotes, err = a.ask("Body notes", e.BodyNotes); err != nil {
		return e, err
	}
	return e, nil
}

// ask reads an optional text field; "-" clears it.
func (a *App) ask(prompt, current string) (string, error) {
	v, err := GetOptional(a.reader, prompt, current, a.out)
	if v == "-" {
		return "", err
	}
	return v, err
}

func (a *App) number(prompt string, current int) (int, error) {
	return GetNumber(a.reader, prompt, current, a.out)
}

func splitTags(s string) []string {
	var tags []string
	for _, t := range strings.Split(s, ",") {
		if t = strings.TrimSpace(t); t != "" {
			tags = append(tags, t)
		}
	}
	return tags
}

// summary is the one-line form used by list. Extra private events hide their
// details unless showPrivate is set.
func summary(ev models.Event, showPrivate bool) string {
	head := fmt.Sprintf("%s  %s  %s/%s", ev.ID, ev.Time().Local().Format("2006-01-02 15:04"), ev.SourceType, ev.SoloOrPartner)
	if ev.PrivacyLevel == models.PrivacyExtraPrivate && !showPrivate {
		return head + "  (private)"
	}

	var b strings.Builder
	b.WriteString(head)
	if ev.Intensity > 0 {
		fmt.Fprintf(&b, "  intensity %d", ev.Intensity)
	}
	if ev.LoadSize != "" {
		fmt.Fprintf(&b, "  %s", ev.LoadSize)
	}
	if note := firstLine(ev.Notes); note != "" {
		fmt.Fprintf(&b, "  %q", note)
	}
	return b.String()
}

func firstLine(s string) string {
	line, _, _ := strings.Cut(s, "\n")
	if len(line) > 40 {
		return line[:40] + "..."
	}
	return line
}

// details renders every set field of ev, one per line.
func details(ev models.Event) []string {
	lines := []string{
		"ID: " + ev.ID,
		"Date: " + ev.Time().Local().Format("2006-01-02 15:04:05"),
		"Source: " + string(ev.SourceType),
		"Solo or partnered: " + string(ev.SoloOrPartner),
	}
	add := func(label, value string) {
		if value != "" {
			lines = append(lines, label+": "+value)
		}
	}
	addInt := func(label string, v int) {
		if v > 0 {
			lines = append(lines, fmt.Sprintf("%s: %d", label, v))
		}
	}

	add("Source label", ev.SourceLabel)
	addInt("Intensity", ev.Intensity)
	addInt("Mood before", ev.MoodBefore)
	addInt("Mood after", ev.MoodAfter)
	add("Load size", string(ev.LoadSize))
	add("Cleanup", string(ev.Cleanup))
	add("Protection", string(ev.ProtectionUsed))
	add("Privacy", string(ev.PrivacyLevel))
	add("Tags", strings.Join(ev.Tags, ", "))
	add("Refractory notes", ev.RefractoryNotes)
	add("Body notes", ev.BodyNotes)
	add("Notes", ev.Notes)
	return lines
}
