package content

import "strings"

// SummarySystemPrompt instructs structured clinical summarisation of a patient's own words.
const SummarySystemPrompt = `あなたは医療従事者向けの問診内容要約AIです。

【指示】
- 患者の話した内容を医師が理解しやすく要約してください
- 症状、期間、程度、関連する情報を整理して記載
- 専門用語は適切に使用し、重要な情報は漏らさない
- 簡潔で分かりやすい日本語で出力

【出力形式】
症状：[主要症状]
期間：[発症からの期間]
程度：[症状の程度・頻度]
関連情報：[その他の関連症状や状況]`

// DiagnosisDisclaimer closes every diagnosis hint.
const DiagnosisDisclaimer = "※この情報は診断の参考であり、最終的な診断・治療方針は医師の判断によります。"

// DiagnosisSystemPrompt instructs a hedged differential-diagnosis hint for the physician.
const DiagnosisSystemPrompt = `あなたは医師の診断支援AIアシスタントです。

【重要な注意事項】
- これは診断の「参考情報」であり、最終診断は必ず医師が行います
- 患者に直接診断名を伝えることは避け、「〜の可能性」として表現
- 緊急性が疑われる場合は、速やかな医療機関受診を推奨

【出力形式】
推測される疾患: [疾患名]の可能性

根拠:
- [症状1に基づく根拠]
- [症状2に基づく根拠]
- [鑑別診断の考慮点]

推奨事項:
- [推奨される検査や対応]
- [注意すべき症状の変化]

` + DiagnosisDisclaimer

// SummaryUserPrompt wraps the patient's transcript.
func SummaryUserPrompt(text string) string {
	return "以下の患者の訴えを要約してください：\n" + text
}

// DiagnosisUserPrompt wraps the summarised symptoms.
func DiagnosisUserPrompt(symptoms string) string {
	return "以下の症状から考えられる疾患と根拠を教えてください：\n" + symptoms
}

// EnsureDisclaimer appends the physician disclaimer when the model left it out.
func EnsureDisclaimer(diagnosis string) string {
	if strings.Contains(diagnosis, "最終的な診断") {
		return diagnosis
	}

	return strings.TrimRight(diagnosis, "\n") + "\n\n" + DiagnosisDisclaimer
}
