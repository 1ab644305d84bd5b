// Package testutil provides testing utilities and helpers for the patrol scheduling system.
package testutil

import (
	"time"

	"github.com/strixlab/patrol/internal/domain/model"
)

// BoefjeTaskBuilder provides a fluent interface for building BoefjeTask objects for testing.
type BoefjeTaskBuilder struct {
	task *model.BoefjeTask
}

// NewBoefjeTask creates a new BoefjeTaskBuilder with sensible defaults.
func NewBoefjeTask() *BoefjeTaskBuilder {
	return &BoefjeTaskBuilder{
		task: &model.BoefjeTask{
			Boefje:       model.Boefje{ID: "dns-records", Version: "1.0.0"},
			InputOOI:     "Hostname|internet|example.com",
			Organization: "acme",
			Dispatches:   []model.Normalizer{},
		},
	}
}

// WithBoefje sets the boefje payload.
func (b *BoefjeTaskBuilder) WithBoefje(boefje model.Boefje) *BoefjeTaskBuilder {
	b.task.Boefje = boefje
	return b
}

// WithBoefjeID sets the boefje identifier.
func (b *BoefjeTaskBuilder) WithBoefjeID(id string) *BoefjeTaskBuilder {
	b.task.Boefje.ID = id
	return b
}

// WithInputOOI sets the input object reference.
func (b *BoefjeTaskBuilder) WithInputOOI(ref string) *BoefjeTaskBuilder {
	b.task.InputOOI = ref
	return b
}

// WithOrganization sets the owning organisation.
func (b *BoefjeTaskBuilder) WithOrganization(org string) *BoefjeTaskBuilder {
	b.task.Organization = org
	return b
}

// Build returns the constructed BoefjeTask.
func (b *BoefjeTaskBuilder) Build() *model.BoefjeTask {
	return b.task
}

// PluginBuilder provides a fluent interface for building Plugin objects for testing.
type PluginBuilder struct {
	plugin *model.Plugin
}

// NewPlugin creates a new PluginBuilder with sensible defaults.
func NewPlugin() *PluginBuilder {
	return &PluginBuilder{
		plugin: &model.Plugin{
			ID:        "dns-records",
			Name:      "DNS records",
			Version:   "1.0.0",
			Type:      model.PluginTypeBoefje,
			ScanLevel: 1,
			Consumes:  []string{"Hostname"},
			Produces:  []string{"boefje/dns-records"},
			Enabled:   true,
		},
	}
}

// WithID sets the plugin identifier.
func (b *PluginBuilder) WithID(id string) *PluginBuilder {
	b.plugin.ID = id
	return b
}

// WithType sets the plugin type.
func (b *PluginBuilder) WithType(t model.PluginType) *PluginBuilder {
	b.plugin.Type = t
	return b
}

// WithScanLevel sets the minimum scan level the plugin requires.
func (b *PluginBuilder) WithScanLevel(level int) *PluginBuilder {
	b.plugin.ScanLevel = level
	return b
}

// WithConsumes sets the object types or mime types the plugin consumes.
func (b *PluginBuilder) WithConsumes(consumes ...string) *PluginBuilder {
	b.plugin.Consumes = consumes
	return b
}

// WithEnabled sets the enabled flag.
func (b *PluginBuilder) WithEnabled(enabled bool) *PluginBuilder {
	b.plugin.Enabled = enabled
	return b
}

// Build returns the constructed Plugin.
func (b *PluginBuilder) Build() *model.Plugin {
	return b.plugin
}

// OOIBuilder provides a fluent interface for building OOI objects for testing.
type OOIBuilder struct {
	ooi *model.OOI
}

// NewOOI creates a new OOIBuilder with sensible defaults.
func NewOOI() *OOIBuilder {
	return &OOIBuilder{
		ooi: &model.OOI{
			PrimaryKey: "Hostname|internet|example.com",
			ObjectType: "Hostname",
			ScanProfile: &model.ScanProfile{
				ProfileType: "declared",
				Reference:   "Hostname|internet|example.com",
				Level:       2,
			},
		},
	}
}

// WithPrimaryKey sets the object reference.
func (b *OOIBuilder) WithPrimaryKey(pk string) *OOIBuilder {
	b.ooi.PrimaryKey = pk
	if b.ooi.ScanProfile != nil {
		b.ooi.ScanProfile.Reference = pk
	}
	return b
}

// WithObjectType sets the object type.
func (b *OOIBuilder) WithObjectType(t string) *OOIBuilder {
	b.ooi.ObjectType = t
	return b
}

// WithScanLevel sets the scan profile level.
func (b *OOIBuilder) WithScanLevel(level int) *OOIBuilder {
	if b.ooi.ScanProfile == nil {
		b.ooi.ScanProfile = &model.ScanProfile{Reference: b.ooi.PrimaryKey}
	}
	b.ooi.ScanProfile.Level = level
	return b
}

// WithoutScanProfile clears the scan profile.
func (b *OOIBuilder) WithoutScanProfile() *OOIBuilder {
	b.ooi.ScanProfile = nil
	return b
}

// WithCheckedAt sets the last-checked timestamp.
func (b *OOIBuilder) WithCheckedAt(t time.Time) *OOIBuilder {
	b.ooi.CheckedAt = &t
	return b
}

// Build returns the constructed OOI.
func (b *OOIBuilder) Build() *model.OOI {
	return b.ooi
}

// Common test presets

// QueuedItem creates a prioritized item wrapping a boefje task, ready to push.
func QueuedItem(priority int64) *model.PrioritizedItem {
	task := NewBoefjeTask().Build()
	data, _ := task.MarshalData()
	return model.NewPrioritizedItem(priority, task.Hash(), data)
}

// QueuedItemFor creates a prioritized item for the given boefje and input object.
func QueuedItemFor(priority int64, boefjeID, inputOOI, org string) *model.PrioritizedItem {
	task := NewBoefjeTask().
		WithBoefjeID(boefjeID).
		WithInputOOI(inputOOI).
		WithOrganization(org).
		Build()
	data, _ := task.MarshalData()
	return model.NewPrioritizedItem(priority, task.Hash(), data)
}

// DisabledPlugin creates a boefje plugin that is switched off for the organisation.
func DisabledPlugin() *model.Plugin {
	return NewPlugin().WithEnabled(false).Build()
}

// NormalizerPlugin creates a normalizer plugin consuming the given mime type.
func NormalizerPlugin(mime string) *model.Plugin {
	return NewPlugin().
		WithID("kat_dns_normalize").
		WithType(model.PluginTypeNormalizer).
		WithConsumes(mime).
		Build()
}
