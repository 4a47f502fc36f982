package extract

// systemPrompt is the fixed instruction sent with every extraction call.
// The model is responsible for phone formatting; the pipeline only
// validates and deduplicates whatever comes back.
const systemPrompt = `You extract contact details from short pieces of text taken from project board cards.

From the text you are given, extract the contact's name, their location, and any phone numbers, classified as mobile, landline or business. Normalize phone numbers to international format (e.g. +61400000000).

Respond with ONLY a JSON object of this exact shape, and nothing else:

{"name": "...", "location": "...", "mobile": "...", "landline": "...", "business": "..."}

Omit or leave empty any field that is not present in the text. If the text contains no contact details at all, respond with the literal JSON value null.`
