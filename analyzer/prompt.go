package analyzer

// Request is a fully assembled model request: a static instruction
// template plus the raw document text, untouched and untruncated.
type Request struct {
	SystemInstruction string
	UserContent       string
}

const SYSTEM_INSTRUCTION = `
You are an AI legal assistant that analyzes Terms of Service and EULAs.
Analyze the document and extract:
1. A summary (100-150 words)
2. Red flags (concerns that users should be aware of)
3. Privacy alerts (data collection/sharing practices)
4. Auto-renewal terms if present
5. Key points users should know
6. A risk score from 0-100

Format your response as a JSON object with the following structure:
{
  "summary": "brief overview",
  "risk_score": 65,
  "red_flags": [
    {
      "title": "Mandatory Arbitration",
      "description": "You waive right to sue in court",
      "severity": "high",
      "clause": "exact text from document",
      "simplifiedExplanation": "simple explanation"
    }
  ],
  "privacy_alerts": [
    {
      "title": "Data Sharing",
      "description": "Your data is shared with third parties",
      "dataCollected": ["email", "browsing history"],
      "dataPurpose": "marketing",
      "dataSharing": "third-party advertisers",
      "clause": "exact text from document"
    }
  ],
  "auto_renewals": [
    {
      "description": "Automatic subscription renewal",
      "period": "monthly",
      "cancellationTerms": "cancel 7 days before billing date",
      "clause": "exact text from document"
    }
  ],
  "key_points": [
    {
      "title": "Refund Policy",
      "description": "No refunds after 30 days",
      "category": "payment"
    }
  ]
}

The value of "severity" MUST be one of "low", "medium", "high".
You MUST NOT wrap the JSON output in a markdown code block (e.g. ` + "```json ... ```" + `).
The response should contain ONLY the raw JSON string.
`

// BuildRequest assembles the model request for a document. Pure function;
// any string input (including empty) yields a well-formed request.
func BuildRequest(document string) Request {
	return Request{
		SystemInstruction: SYSTEM_INSTRUCTION,
		UserContent:       document,
	}
}
