package command

import (
	"bufio"
	"bytes"
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/dgnsrekt/readaloud/tts"
)

// Binaries in the order they are tried when none is configured.
var Binaries = []string{"espeak-ng", "espeak", "say", "spd-say"}

// profile knows how to drive one speech command.
type profile struct {
	// argv returns the arguments for speaking text. When stdin is true the
	// text is written to the process instead.
	argv func(req tts.Utterance, wpm int) (args []string, stdin bool)

	// voices lists voices, or is nil when the command cannot.
	voicesArgs  []string
	parseVoices func(out []byte) []tts.Voice
}

func profileFor(binary string) profile {
	switch baseName(binary) {
	case "say":
		return sayProfile
	case "spd-say":
		return spdProfile
	default:
		return espeakProfile
	}
}

func baseName(binary string) string {
	if i := strings.LastIndexAny(binary, `/\`); i >= 0 {
		binary = binary[i+1:]
	}
	return strings.TrimSuffix(binary, ".exe")
}

func scaledRate(req tts.Utterance, wpm int) int {
	r := req.Rate
	if r <= 0 {
		r = 1
	}
	return round(float64(wpm) * r)
}

func round(f float64) int { return int(math.Round(f)) }

func clamp(v, lo, hi int) int {
	return max(lo, min(v, hi))
}

var espeakProfile = profile{
	argv: func(req tts.Utterance, wpm int) ([]string, bool) {
		args := []string{"--stdin", "-s", strconv.Itoa(scaledRate(req, wpm))}
		// espeak pitch is 0-99 with 50 as normal.
		args = append(args, "-p", strconv.Itoa(clamp(round(req.Pitch*50), 0, 99)))
		if v := voiceOrLang(req); v != "" {
			args = append(args, "-v", v)
		}
		return args, true
	},
	voicesArgs:  []string{"--voices=en"},
	parseVoices: parseEspeakVoices,
}

var sayProfile = profile{
	argv: func(req tts.Utterance, wpm int) ([]string, bool) {
		args := []string{"-r", strconv.Itoa(scaledRate(req, wpm))}
		if req.Voice != "" {
			args = append(args, "-v", req.Voice)
		}
		return append(args, "-f", "-"), true
	},
	voicesArgs:  []string{"-v", "?"},
	parseVoices: parseSayVoices,
}

var spdProfile = profile{
	argv: func(req tts.Utterance, wpm int) ([]string, bool) {
		r := req.Rate
		if r <= 0 {
			r = 1
		}
		// spd-say rate and pitch run -100..100 with 0 as normal.
		args := []string{
			"-w",
			"-r", strconv.Itoa(clamp(round((r-1)*50), -100, 100)),
			"-p", strconv.Itoa(clamp(round((req.Pitch-1)*100), -100, 100)),
		}
		if req.Voice != "" {
			args = append(args, "-y", req.Voice)
		}
		if req.Lang != "" {
			args = append(args, "-l", req.Lang)
		}
		return append(args, textArg(req.Text)), false
	},
	voicesArgs:  []string{"-L"},
	parseVoices: parseSpdVoices,
}

// textArg keeps text that starts with a dash from being read as a flag.
func textArg(text string) string {
	if strings.HasPrefix(text, "-") {
		return " " + text
	}
	return text
}

func voiceOrLang(req tts.Utterance) string {
	if req.Voice != "" {
		return req.Voice
	}
	return strings.ToLower(req.Lang)
}

// parseEspeakVoices reads `espeak-ng --voices` output:
//
//	Pty Language       Age/Gender VoiceName          File                 Other Languages
//	 2  en-us           --/M      English_(America)  gmw/en-US            (en 3)
func parseEspeakVoices(out []byte) []tts.Voice {
	var voices []tts.Voice
	sc := bufio.NewScanner(bytes.NewReader(out))
	for sc.Scan() {
		f := strings.Fields(sc.Text())
		if len(f) < 4 || f[0] == "Pty" {
			continue
		}
		voices = append(voices, tts.Voice{Name: f[3], Lang: f[1], Local: true})
	}
	return voices
}

var sayVoiceLine = regexp.MustCompile(`^(.+?)\s+([a-z]{2,3}[_-][A-Za-z0-9]+)\s+#`)

// parseSayVoices reads `say -v ?` output:
//
//	Alex                en_US    # Most people recognize me by my voice.
func parseSayVoices(out []byte) []tts.Voice {
	var voices []tts.Voice
	sc := bufio.NewScanner(bytes.NewReader(out))
	for sc.Scan() {
		m := sayVoiceLine.FindStringSubmatch(sc.Text())
		if m == nil {
			continue
		}
		voices = append(voices, tts.Voice{
			Name:  strings.TrimSpace(m[1]),
			Lang:  strings.ReplaceAll(m[2], "_", "-"),
			Local: true,
		})
	}
	return voices
}

// parseSpdVoices reads `spd-say -L` output:
//
//	NAME                 LANGUAGE             VARIANT
//	english-us           en-US                none
func parseSpdVoices(out []byte) []tts.Voice {
	var voices []tts.Voice
	sc := bufio.NewScanner(bytes.NewReader(out))
	for sc.Scan() {
		f := strings.Fields(sc.Text())
		if len(f) < 2 || f[0] == "NAME" {
			continue
		}
		voices = append(voices, tts.Voice{Name: f[0], Lang: f[1], Local: true})
	}
	return voices
}
