package voice

import "encoding/xml"

// The telephony vendor drives a call by POSTing webhooks and executing the
// XML verbs we answer with: speak a prompt, gather the caller's speech, dial
// an operator, or hang up.

// Say speaks text with the vendor's native voice.
type Say struct {
	XMLName xml.Name `xml:"Say"`
	Voice   string   `xml:"voice,attr,omitempty"`
	Text    string   `xml:",chardata"`
}

// Play streams a synthesized audio file to the caller.
type Play struct {
	XMLName xml.Name `xml:"Play"`
	URL     string   `xml:",chardata"`
}

// Gather speaks its nested prompt and then records the caller's reply,
// posting the transcription to Action.
type Gather struct {
	XMLName       xml.Name `xml:"Gather"`
	Input         string   `xml:"input,attr"`
	Action        string   `xml:"action,attr"`
	Method        string   `xml:"method,attr"`
	SpeechTimeout string   `xml:"speechTimeout,attr,omitempty"`
	Say           *Say
	Play          *Play
}

// Number is the dialed endpoint inside a Dial verb.
type Number struct {
	XMLName xml.Name `xml:"Number"`
	Text    string   `xml:",chardata"`
}

// Dial bridges the caller to the operator, posting the outcome to Action
// after the ring timeout.
type Dial struct {
	XMLName xml.Name `xml:"Dial"`
	Timeout int      `xml:"timeout,attr"`
	Action  string   `xml:"action,attr"`
	Method  string   `xml:"method,attr"`
	Number  Number
}

// Hangup ends the call.
type Hangup struct {
	XMLName xml.Name `xml:"Hangup"`
}

// Response is the vendor markup document. Verbs execute in field order.
type Response struct {
	XMLName xml.Name `xml:"Response"`
	Say     *Say     `xml:",omitempty"`
	Play    *Play    `xml:",omitempty"`
	Gather  *Gather  `xml:",omitempty"`
	Dial    *Dial    `xml:",omitempty"`
	Hangup  *Hangup  `xml:",omitempty"`
}

// Render marshals the response with the XML declaration the vendor expects.
func (r Response) Render() ([]byte, error) {
	body, err := xml.Marshal(r)
	if err != nil {
		return nil, err
	}
	return append([]byte(xml.Header), body...), nil
}

// gatherPrompt builds a gather that speaks the prompt and listens for the
// caller's reply.
func gatherPrompt(say *Say, play *Play, actionURL string) *Gather {
	return &Gather{
		Input:         "speech",
		Action:        actionURL,
		Method:        "POST",
		SpeechTimeout: "auto",
		Say:           say,
		Play:          play,
	}
}
