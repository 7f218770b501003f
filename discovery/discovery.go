// Package discovery builds the service- and agent-level capability cards
// published at the well-known discovery URLs (spec §4.6), projecting the
// registry's configs rather than owning any state of its own. The per-agent
// card embeds the A2A protocol's own card type
// (github.com/a2aproject/a2a-go/a2a.AgentCard) rather than a hand-rolled
// shape, grounded on the teacher's pkg/server/http.go buildAgentCard; the
// service-level index has no protocol equivalent (it lists many agents, not
// one) and stays a local type.
package discovery

import (
	"sort"
	"strings"

	"github.com/a2aproject/a2a-go/a2a"

	"github.com/agentrelay/agentrelay/agent"
	"github.com/agentrelay/agentrelay/config"
)

// Skill is one advertised capability listed on the service index, either an
// agent itself (discoverable) or one of its declared capabilities,
// id-prefixed per agent (spec §4.6).
type Skill struct {
	ID          string `json:"id"`
	Name        string `json:"name,omitempty"`
	Description string `json:"description,omitempty"`
}

// ServiceCard is the top-level descriptor at /.well-known/agent.json.
type ServiceCard struct {
	Name            string  `json:"name"`
	Description     string  `json:"description"`
	ProtocolVersion string  `json:"protocolVersion"`
	Version         string  `json:"version"`
	URL             string  `json:"url"`
	Skills          []Skill `json:"skills"`
}

// AgentCard is the per-agent descriptor at
// /.well-known/agents/:path/agent.json. It embeds the A2A protocol's own
// AgentCard so a card served here is structurally the same document any
// other A2A-compliant client expects, plus Path for this service's own
// routing (the protocol card has no notion of a path segment).
type AgentCard struct {
	a2a.AgentCard
	Path string `json:"path"`
}

const (
	protocolVersion = "1.0"
	defaultMIMEType = "text/plain"
)

var defaultCapabilities = a2a.AgentCapabilities{Streaming: true}

// Generator produces discovery cards from a live registry.
type Generator struct {
	registry    *agent.AgentRegistry
	name        string
	description string
	version     string
	baseURL     string
}

// NewGenerator builds a Generator. baseURL's trailing slash is stripped
// (spec §4.6).
func NewGenerator(registry *agent.AgentRegistry, name, description, version, baseURL string) *Generator {
	return &Generator{
		registry:    registry,
		name:        name,
		description: description,
		version:     version,
		baseURL:     strings.TrimSuffix(baseURL, "/"),
	}
}

// ServiceCard lists a skill for every discoverable agent, plus one
// additional skill per capability that agent declares, id-prefixed
// "<agentId>:<capabilityId>" (spec §4.6).
func (g *Generator) ServiceCard() ServiceCard {
	configs := discoverableConfigs(g.registry)

	skills := make([]Skill, 0, len(configs))
	for _, c := range configs {
		skills = append(skills, Skill{ID: c.ID, Name: c.Name, Description: c.Description})
		for _, capability := range c.Discovery.Capabilities {
			skills = append(skills, Skill{ID: c.ID + ":" + capability})
		}
	}
	sortSkills(skills)

	return ServiceCard{
		Name:            g.name,
		Description:     g.description,
		ProtocolVersion: protocolVersion,
		Version:         g.version,
		URL:             g.baseURL,
		Skills:          skills,
	}
}

// AgentCard returns path's card, or (zero, false) if path is unregistered
// or not discoverable (spec §4.6).
func (g *Generator) AgentCard(path string) (AgentCard, bool) {
	c, err := g.registry.GetConfig(path)
	if err != nil || !c.Discovery.IsDiscoverable() {
		return AgentCard{}, false
	}

	skills := make([]a2a.AgentSkill, 0, len(c.Discovery.Capabilities))
	for _, capability := range c.Discovery.Capabilities {
		skills = append(skills, a2a.AgentSkill{ID: capability})
	}
	sort.Slice(skills, func(i, j int) bool { return skills[i].ID < skills[j].ID })
	if len(skills) == 0 {
		skills = []a2a.AgentSkill{{ID: c.ID, Name: c.Name, Description: c.Description}}
	}

	return AgentCard{
		AgentCard: a2a.AgentCard{
			Name:               c.Name,
			Description:        c.Description,
			URL:                g.baseURL + "/agents/" + c.Path,
			Version:            g.version,
			ProtocolVersion:    protocolVersion,
			DefaultInputModes:  []string{defaultMIMEType},
			DefaultOutputModes: []string{defaultMIMEType},
			Skills:             skills,
			Capabilities:       defaultCapabilities,
			PreferredTransport: a2a.TransportProtocolJSONRPC,
		},
		Path: c.Path,
	}, true
}

func discoverableConfigs(registry *agent.AgentRegistry) []*config.AgentConfig {
	all := registry.ListConfigs()
	out := make([]*config.AgentConfig, 0, len(all))
	for _, c := range all {
		if c.Discovery.IsDiscoverable() {
			out = append(out, c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Path < out[j].Path })
	return out
}

func sortSkills(skills []Skill) {
	sort.Slice(skills, func(i, j int) bool { return skills[i].ID < skills[j].ID })
}
