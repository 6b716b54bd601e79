package intake

// Advisories shown when the detector steers away from live recognition.
const (
	NoticeMobileUpload  = "iOSのSafariをご利用の場合、音声ファイルのアップロード機能をご利用ください。"
	NoticeGenericUpload = "この環境では音声ファイルのアップロード機能をご利用ください。"
)

// CapabilityProvider answers what the runtime platform can do.
type CapabilityProvider interface {
	// Platform names the environment, for logs.
	Platform() string
	// MobileWithoutLiveRecognition is true for mobile platforms whose
	// default engine lacks live recognition.
	MobileWithoutLiveRecognition() bool
	LiveRecognitionSupported() bool
}

// Detection is the one-shot input method decision.
type Detection struct {
	Method   InputMethod
	Notice   string
	Platform string
}

// Detect classifies the platform. It never selects MethodManual.
func Detect(p CapabilityProvider) Detection {
	d := Detection{Platform: p.Platform()}

	switch {
	case p.MobileWithoutLiveRecognition():
		d.Method, d.Notice = MethodUpload, NoticeMobileUpload
	case !p.LiveRecognitionSupported():
		d.Method, d.Notice = MethodUpload, NoticeGenericUpload
	default:
		d.Method = MethodSpeech
	}

	return d
}
