package voicechat

import (
	"strings"
	"testing"
	"time"

	"github.com/RockInMyHead/windexs-ai-learn-sub000/core/llms"
)

func TestTurnLogLastAssistant(t *testing.T) {
	log := &turnLog{}

	if _, ok := log.lastAssistant(); ok {
		t.Fatal("expected no assistant turn in an empty log")
	}

	log.append(llms.TurnRoleUser, "привет", false, time.Now())
	log.append(llms.TurnRoleAssistant, "Здравствуй, начнём занятие.", false, time.Now())
	log.append(llms.TurnRoleAssistant, "Жил-был кот", true, time.Now())
	log.append(llms.TurnRoleUser, "стоп подожди", false, time.Now())

	turn, ok := log.lastAssistant()
	if !ok {
		t.Fatal("expected to find the most recent assistant turn")
	}
	if turn.Content != "Жил-был кот" || !turn.Interrupted {
		t.Fatalf("expected the interrupted assistant turn, got %+v", turn)
	}
}

func TestBridgedPromptQuotesBothSides(t *testing.T) {
	interrupted := llms.Turn{Role: llms.TurnRoleAssistant, Content: "Жил-был кот", Interrupted: true}

	prompt := bridgedPrompt(interrupted, "стоп подожди")
	if !strings.Contains(prompt, "Жил-был кот") || !strings.Contains(prompt, "стоп подожди") {
		t.Fatalf("expected the bridge to quote the cut-off reply and the utterance, got %q", prompt)
	}
}
