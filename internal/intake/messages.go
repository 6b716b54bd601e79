package intake

// User-facing messages placed in UI.Error.
const (
	MsgNotAllowed       = "マイクへのアクセスが拒否されました。設定でマイクの使用を許可してください。"
	MsgNoSpeech         = "音声が検出されませんでした。もう一度お試しください。"
	MsgRecognition      = "音声認識エラーが発生しました。"
	MsgDeviceFallback   = "マイクにアクセスできませんでした。設定を確認してください。症状は文字で入力できます。"
	MsgNotAudio         = "音声ファイルを選択してください。"
	MsgAudioTooLarge    = "音声ファイルが大きすぎます（最大25 MiB）。"
	MsgTranscribeFailed = "音声の処理中にエラーが発生しました。"
	MsgUploadFailed     = "音声ファイルのアップロード中にエラーが発生しました。"
	MsgSummarizeFailed  = "AI処理中にエラーが発生しました。"
	MsgDiagnoseFailed   = "診断の生成中にエラーが発生しました。"
)
