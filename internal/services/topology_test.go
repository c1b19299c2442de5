package services

import "testing"

func threeChannelTopology() Topology {
	return Topology{
		GuildID: "g1",
		Channels: []LanguageChannel{
			{Language: "en", ChannelID: "c-en"},
			{Language: "ko", ChannelID: "c-ko"},
			{Language: "ja", ChannelID: "c-ja"},
		},
	}
}

func TestTopologyLanguageOf(t *testing.T) {
	topo := threeChannelTopology()

	lang, ok := topo.LanguageOf("c-ko")
	if !ok || lang != "ko" {
		t.Fatalf("LanguageOf(c-ko) = %q, %v", lang, ok)
	}
	if _, ok := topo.LanguageOf("c-unknown"); ok {
		t.Fatalf("unknown channel should not resolve")
	}
}

func TestTopologyTargetsExcludeSource(t *testing.T) {
	topo := threeChannelTopology()

	targets := topo.TargetsExcluding("en")
	if len(targets) != 2 {
		t.Fatalf("expected 2 targets, got %d", len(targets))
	}
	for _, tgt := range targets {
		if tgt.Language == "en" {
			t.Fatalf("source language must never be a target")
		}
	}
}

func TestTopologySingleChannelHasNoTargets(t *testing.T) {
	topo := Topology{
		GuildID:  "g1",
		Channels: []LanguageChannel{{Language: "en", ChannelID: "c-en"}},
	}
	if targets := topo.TargetsExcluding("en"); targets != nil {
		t.Fatalf("single-channel guild should have no targets, got %v", targets)
	}

	empty := Topology{GuildID: "g1"}
	if targets := empty.TargetsExcluding("en"); targets != nil {
		t.Fatalf("empty topology should have no targets, got %v", targets)
	}
}
