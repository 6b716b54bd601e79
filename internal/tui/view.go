package tui

import (
	"strings"

	"github.com/alkime/monshin/internal/intake"
	"github.com/alkime/monshin/internal/tui/style"
	"github.com/alkime/monshin/pkg/collections"
	"github.com/charmbracelet/bubbles/key"
)

var methodLabels = map[intake.InputMethod]string{
	intake.MethodSpeech: "音声認識",
	intake.MethodUpload: "録音・音声ファイル",
	intake.MethodManual: "手入力",
}

func (m *model) View() string {
	var sb strings.Builder

	sb.WriteString(style.Title.Render("音声問診システム"))
	sb.WriteString("\n")
	sb.WriteString(m.steps.View())
	sb.WriteString("\n\n")

	if m.state.UI.Notice != "" {
		sb.WriteString(style.Warning.Render("⚠ " + m.state.UI.Notice))
		sb.WriteString("\n\n")
	}

	switch m.state.UI.Step {
	case intake.StepPatientInfo:
		sb.WriteString(m.form.view())
	case intake.StepVoiceInput:
		sb.WriteString(m.voiceInputView())
	case intake.StepConfirm:
		sb.WriteString(m.confirmView())
	case intake.StepSubmitted:
		sb.WriteString(style.Success.Render("✓ 問診票を送信しました"))
		sb.WriteString("\n")
		sb.WriteString(style.Subtitle.Render("順番にお呼びしますので、しばらくお待ちください。"))
		sb.WriteString("\n")
	case intake.StepClinician:
		sb.WriteString(m.clinicianView())
	}

	if m.state.UI.Loading {
		sb.WriteString("\n")
		sb.WriteString(m.spinner.View())
		sb.WriteString("\n")
	}

	if m.state.UI.Error != "" {
		sb.WriteString("\n")
		sb.WriteString(style.Error.Render("✗ " + m.state.UI.Error))
		sb.WriteString("\n")
	}

	if m.hint != "" {
		sb.WriteString("\n")
		sb.WriteString(style.Warning.Render(m.hint))
		sb.WriteString("\n")
	}

	sb.WriteString("\n")
	sb.WriteString(m.help.View(m.helpFor()))

	return sb.String()
}

func (m *model) voiceInputView() string {
	var sb strings.Builder

	sb.WriteString(style.Label.Render("入力方法: "))
	sb.WriteString(methodLabels[m.state.UI.Method])
	sb.WriteString("\n\n")

	switch m.state.UI.Capture {
	case intake.CaptureStarting:
		sb.WriteString(style.Subtitle.Render("マイクを準備しています…"))
		sb.WriteString("\n")
	case intake.CaptureListening:
		sb.WriteString(style.Recording.Render("● 録音中"))
		sb.WriteString(style.Subtitle.Render("  症状をお話しください。終わったら space で停止します。"))
		sb.WriteString("\n")

		if m.config.Levels != nil {
			sb.WriteString(m.wave.View())
			sb.WriteString("\n")
		}

		if m.state.UI.Method == intake.MethodUpload {
			if meter := m.meter.View(); meter != "" {
				sb.WriteString(meter)
				sb.WriteString("\n")
			}
		}
	case intake.CaptureStopping:
		sb.WriteString(style.Subtitle.Render("録音を終了しています…"))
		sb.WriteString("\n")
	case intake.CaptureIdle:
		if m.state.UI.Method != intake.MethodManual {
			sb.WriteString(style.Subtitle.Render("space で録音を開始します。"))
			sb.WriteString("\n")
		}
	}

	if m.picking {
		sb.WriteString(m.path.View())
		sb.WriteString("\n")
	}

	if text := m.state.Transcription(); !intake.Blank(text) {
		sb.WriteString("\n")
		sb.WriteString(style.Label.Render("音声記録"))
		sb.WriteString("\n")
		sb.WriteString(style.Card.Render(text))
		sb.WriteString("\n")
	}

	sb.WriteString("\n")
	sb.WriteString(style.Label.Render("症状（編集できます）"))
	sb.WriteString("\n")
	sb.WriteString(m.editor.View())
	sb.WriteString("\n")

	return sb.String()
}

func (m *model) confirmView() string {
	p := m.state.Patient
	r := m.state.Review

	symptoms, _ := collections.FirstMatch(func(s string) bool { return !intake.Blank(s) },
		r.EditableText, r.Summary, m.state.Transcription())

	var sb strings.Builder

	sb.WriteString(style.Subtitle.Render("以下の内容で送信します。よろしければ enter を押してください。"))
	sb.WriteString("\n\n")

	info := strings.Join([]string{
		style.Label.Render("受診区分: ") + p.VisitType.Label(),
		style.Label.Render("氏名: ") + p.LastName + " " + p.FirstName,
		style.Label.Render("性別: ") + p.Gender.Label(),
	}, "\n")
	sb.WriteString(style.Card.Render(info))
	sb.WriteString("\n")
	sb.WriteString(style.Label.Render("症状"))
	sb.WriteString("\n")
	sb.WriteString(style.Card.Render(symptoms))
	sb.WriteString("\n")

	return sb.String()
}

func (m *model) clinicianView() string {
	p := m.state.Patient
	r := m.state.Review

	var sb strings.Builder

	sb.WriteString(style.Label.Render("患者: "))
	sb.WriteString(p.LastName + " " + p.FirstName + "（" + p.Gender.Label() + "・" + p.VisitType.Label() + "）")
	sb.WriteString("\n\n")

	section := func(title, body, empty string) {
		sb.WriteString(style.Label.Render(title))
		sb.WriteString("\n")

		if intake.Blank(body) {
			sb.WriteString(style.Muted.Render(empty))
		} else {
			sb.WriteString(style.Card.Render(body))
		}

		sb.WriteString("\n")
	}

	section("AI要約", r.Summary, "要約はありません")
	section("元の音声記録", m.state.Transcription(), "音声記録はありません")
	section("AI診断補助", r.Diagnosis, "d を押すとAIによる診断補助を実行します")

	return sb.String()
}

// helpFor lists the bindings that do something in the current context.
func (m *model) helpFor() bindings {
	k := m.keys

	switch m.state.UI.Step {
	case intake.StepPatientInfo:
		return bindings{k.NextField, k.Choose, k.Next, k.ForceQuit}
	case intake.StepVoiceInput:
		switch {
		case m.picking:
			return bindings{
				key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "読み込む")),
				key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "キャンセル")),
			}
		case m.editing:
			return bindings{k.Done}
		case m.state.UI.Method == intake.MethodManual:
			return bindings{k.OpenFile, k.Edit, k.Summarize, k.Next, k.Back, k.ForceQuit}
		default:
			return bindings{k.Record, k.OpenFile, k.Edit, k.Summarize, k.Next, k.Back, k.ForceQuit}
		}
	case intake.StepConfirm:
		return bindings{k.Next, k.Back, k.ForceQuit}
	case intake.StepSubmitted:
		return bindings{k.Next, k.ForceQuit}
	case intake.StepClinician:
		return bindings{k.Diagnose, k.Reset, k.ForceQuit}
	}

	return bindings{k.ForceQuit}
}
