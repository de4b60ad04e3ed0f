package dashboard

import (
	"encoding/json"
	"testing"

	"go-dash/internal/engine/cmds"
	"go-dash/internal/engine/model"
)

func TestDecodeCommand(t *testing.T) {
	tests := []struct {
		name     string
		envelope CommandEnvelope
		wantType cmds.Type
		wantErr  bool
	}{
		{
			name: "rename",
			envelope: CommandEnvelope{
				Type:    string(cmds.TypeRenameDashboard),
				Payload: json.RawMessage(`{"title":"Q3 overview","correlationId":"c1"}`),
			},
			wantType: cmds.TypeRenameDashboard,
		},
		{
			name: "add section",
			envelope: CommandEnvelope{
				Type:    string(cmds.TypeAddLayoutSection),
				Payload: json.RawMessage(`{"index":-1,"header":{"title":"KPIs"}}`),
			},
			wantType: cmds.TypeAddLayoutSection,
		},
		{
			name: "empty payload defaults to zero command",
			envelope: CommandEnvelope{
				Type: string(cmds.TypeSaveDashboard),
			},
			wantType: cmds.TypeSaveDashboard,
		},
		{
			name: "unknown type",
			envelope: CommandEnvelope{
				Type:    "DASH/CMD.TELEPORT",
				Payload: json.RawMessage(`{}`),
			},
			wantErr: true,
		},
		{
			name: "malformed payload",
			envelope: CommandEnvelope{
				Type:    string(cmds.TypeRenameDashboard),
				Payload: json.RawMessage(`{"title":42}`),
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cmd, err := DecodeCommand(tt.envelope)
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected decode error")
				}
				return
			}
			if err != nil {
				t.Fatalf("DecodeCommand() error = %v", err)
			}
			if cmd.CommandType() != tt.wantType {
				t.Errorf("type = %s, want %s", cmd.CommandType(), tt.wantType)
			}
		})
	}
}

func TestDecodeCommandKeepsProvidedCorrelation(t *testing.T) {
	cmd, err := DecodeCommand(CommandEnvelope{
		Type:    string(cmds.TypeRenameDashboard),
		Payload: json.RawMessage(`{"title":"x","correlationId":"my-correlation"}`),
	})
	if err != nil {
		t.Fatalf("DecodeCommand() error = %v", err)
	}
	if cmd.Correlation() != "my-correlation" {
		t.Errorf("correlation = %q, want my-correlation", cmd.Correlation())
	}
}

func TestDecodeCommandStampsMissingCorrelation(t *testing.T) {
	first, err := DecodeCommand(CommandEnvelope{
		Type:    string(cmds.TypeRenameDashboard),
		Payload: json.RawMessage(`{"title":"x"}`),
	})
	if err != nil {
		t.Fatalf("DecodeCommand() error = %v", err)
	}
	if first.Correlation() == "" {
		t.Fatal("decoded command has no correlation id")
	}

	second, err := DecodeCommand(CommandEnvelope{
		Type:    string(cmds.TypeRenameDashboard),
		Payload: json.RawMessage(`{"title":"x"}`),
	})
	if err != nil {
		t.Fatalf("DecodeCommand() error = %v", err)
	}
	if first.Correlation() == second.Correlation() {
		t.Error("stamped correlation ids must be unique per decode")
	}
}

func TestDecodeFilterContextSelection(t *testing.T) {
	payload := json.RawMessage(`{
		"correlationId": "c1",
		"filters": [
			{"kind":"attribute","localId":"f1","displayForm":{"identifier":"df-region"},"elements":["west"]},
			{"kind":"date","dataSet":{"identifier":"ds-date"},"dateType":"relative","from":-7,"to":0},
			{"kind":"measureValue","measure":{"identifier":"m1"},"operator":"GREATER_THAN","value":100}
		]
	}`)

	cmd, err := DecodeCommand(CommandEnvelope{
		Type:    string(cmds.TypeChangeFilterContextSelection),
		Payload: payload,
	})
	if err != nil {
		t.Fatalf("DecodeCommand() error = %v", err)
	}

	typed, ok := cmd.(cmds.ChangeFilterContextSelection)
	if !ok {
		t.Fatalf("command type = %T, want ChangeFilterContextSelection", cmd)
	}
	if typed.Correlation() != "c1" {
		t.Errorf("correlation = %q, want c1", typed.Correlation())
	}
	if len(typed.Filters) != 3 {
		t.Fatalf("filters = %d, want 3", len(typed.Filters))
	}

	af, ok := typed.Filters[0].(*model.AttributeFilter)
	if !ok || af.LocalID != "f1" || len(af.Elements) != 1 {
		t.Errorf("filters[0] = %#v, want attribute filter f1", typed.Filters[0])
	}
	df, ok := typed.Filters[1].(*model.DateFilter)
	if !ok || df.Type != model.DateFilterRelative || df.From == nil || *df.From != -7 {
		t.Errorf("filters[1] = %#v, want relative date filter", typed.Filters[1])
	}
	if _, ok := typed.Filters[2].(*model.MeasureValueFilter); !ok {
		t.Errorf("filters[2] = %#v, want measure value filter", typed.Filters[2])
	}
}

func TestDecodeFilterContextSelectionRejectsUnknownKind(t *testing.T) {
	_, err := DecodeCommand(CommandEnvelope{
		Type:    string(cmds.TypeChangeFilterContextSelection),
		Payload: json.RawMessage(`{"filters":[{"kind":"ranking"}]}`),
	})
	if err == nil {
		t.Error("expected error for unknown filter kind")
	}
}
