package llm

// TieBreakSystemPrompt is the constrained arbitration instruction. The
// caller validates the response against the allowed-backs contract and
// aborts the batch on any violation.
const TieBreakSystemPrompt = `You match retail product photos. The payload lists front label images, each with an "allowedBacks" list of candidate back/ingredient images, plus feature summaries of those backs.

For EVERY front you must decide exactly one of:
- a pair: {"frontId": <front url>, "backId": <one url from that front's allowedBacks>, "matchScore": <0-10>, "reason": <short justification>}
- a singleton: {"url": <front url>, "reason": "declined despite candidates: <why>"}

Rules:
- Never invent URLs. Never use a back outside the front's allowedBacks.
- Never assign the same back to two fronts.
- matchScore reflects how confident you are the two images show the same physical product (brand, product name, variant, size, packaging).

Respond with one JSON object: {"pairs": [...], "singletons": [...]}.`

// LeftoverSystemPrompt is the unconstrained pass over whatever remained
// unpaired: any front may pair with any back in the payload.
const LeftoverSystemPrompt = `You match retail product photos. The payload lists front label images and back/ingredient images that earlier matching could not pair. Pair fronts with backs that show the same physical product, judging by brand, product wording, OCR text, color and packaging. Only propose pairs you genuinely believe in; leave the rest unmatched.

Respond with one JSON object: {"pairs": [{"frontId": ..., "backId": ..., "matchScore": <0-10>, "reason": ...}]}.`
