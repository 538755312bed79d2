package config

import (
	"fmt"
	"strings"

	"github.com/mitchellh/mapstructure"
	ini "gopkg.in/ini.v1"
)

const (
	iniJobPrefix             = "job"
	iniTriggerSimplePrefix   = "trigger.simple"
	iniTriggerCronPrefix     = "trigger.cron"
	iniTriggerCalendarPrefix = "trigger.calendar-interval"
)

// ParseINI decodes the legacy section-per-entity format: `[job "name"]`,
// `[trigger.simple "name"]`, `[trigger.cron "name"]`,
// `[trigger.calendar-interval "name"]`.
func ParseINI(data []byte) (*Document, error) {
	f, err := ini.Load(data)
	if err != nil {
		return nil, fmt.Errorf("parse ini: %w", err)
	}

	var doc Document
	for _, section := range f.Sections() {
		name := strings.TrimSpace(section.Name())
		switch {
		case name == ini.DefaultSection:
			continue
		case matchesPrefix(name, iniJobPrefix):
			var j JobDoc
			j.Name = sectionArg(name, iniJobPrefix)
			if err := decodeSection(section, &j); err != nil {
				return nil, fmt.Errorf("job %q: %w", j.Name, err)
			}
			doc.Schedule.Jobs = append(doc.Schedule.Jobs, j)
		case matchesPrefix(name, iniTriggerSimplePrefix):
			t := TriggerDoc{Variant: "simple", Name: sectionArg(name, iniTriggerSimplePrefix)}
			if err := decodeSection(section, &t); err != nil {
				return nil, fmt.Errorf("trigger %q: %w", t.Name, err)
			}
			doc.Schedule.Triggers = append(doc.Schedule.Triggers, t)
		case matchesPrefix(name, iniTriggerCronPrefix):
			t := TriggerDoc{Variant: "cron", Name: sectionArg(name, iniTriggerCronPrefix)}
			if err := decodeSection(section, &t); err != nil {
				return nil, fmt.Errorf("trigger %q: %w", t.Name, err)
			}
			doc.Schedule.Triggers = append(doc.Schedule.Triggers, t)
		case matchesPrefix(name, iniTriggerCalendarPrefix):
			t := TriggerDoc{Variant: "calendar-interval", Name: sectionArg(name, iniTriggerCalendarPrefix)}
			if err := decodeSection(section, &t); err != nil {
				return nil, fmt.Errorf("trigger %q: %w", t.Name, err)
			}
			doc.Schedule.Triggers = append(doc.Schedule.Triggers, t)
		}
	}

	if err := applyDefaults(&doc); err != nil {
		return nil, fmt.Errorf("apply defaults: %w", err)
	}
	return &doc, nil
}

func matchesPrefix(section, prefix string) bool {
	return section == prefix || strings.HasPrefix(section, prefix+" ")
}

func sectionArg(section, prefix string) string {
	s := strings.TrimPrefix(section, prefix)
	s = strings.TrimSpace(s)
	return strings.Trim(s, "\"")
}

func decodeSection(section *ini.Section, out any) error {
	m := sectionToMap(section)
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           out,
		WeaklyTypedInput: true,
		TagName:          "mapstructure",
		ErrorUnused:      true,
	})
	if err != nil {
		return err
	}
	return dec.Decode(m)
}

func sectionToMap(section *ini.Section) map[string]any {
	m := make(map[string]any, len(section.Keys()))
	for _, key := range section.Keys() {
		m[key.Name()] = key.Value()
	}
	return m
}
