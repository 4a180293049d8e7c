// Package agent provides the generation stages of the content pipeline:
// research gathers factual bullet points on a topic, content turns them
// into a platform-shaped post, and image synthesizes an illustration
// prompt and renders it. Each constructor returns a
// pipeline.StageFunc[model.State] so the stages compose into a pipeline
// without knowing about each other.
//
// All prompt and instruction text lives in instructions.yaml, embedded
// at build time. Prompts are deterministic: identical state produces
// byte-identical prompt text.
package agent

import (
	_ "embed"
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/randalmurphal/postflow/internal/model"
)

// Agent identifiers reported in trace events for each generation call.
const (
	ResearchAgent = "research_agent"
	ContentAgent  = "content_agent"
	ImageAgent    = "image_agent"
)

//go:embed instructions.yaml
var instructionsYAML []byte

// instructionSet mirrors instructions.yaml: a system prompt per agent
// plus the per-platform formatting briefs for the content agent.
type instructionSet struct {
	Research struct {
		System string `yaml:"system"`
	} `yaml:"research"`
	Content struct {
		System    string            `yaml:"system"`
		Platforms map[string]string `yaml:"platforms"`
		Default   string            `yaml:"default"`
	} `yaml:"content"`
	Image struct {
		System string `yaml:"system"`
	} `yaml:"image"`
}

var instructions = mustLoadInstructions()

func mustLoadInstructions() instructionSet {
	var set instructionSet
	if err := yaml.Unmarshal(instructionsYAML, &set); err != nil {
		panic(fmt.Sprintf("agent: parse embedded instructions: %v", err))
	}
	return set
}

// platformInstruction returns the content formatting brief for the
// platform, falling back to the generic brief for unmapped values.
func platformInstruction(p model.Platform) string {
	if brief, ok := instructions.Content.Platforms[string(p)]; ok {
		return brief
	}
	return instructions.Content.Default
}
