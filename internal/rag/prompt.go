package rag

import (
	"fmt"
	"strings"
)

// NoResultsMessage is the fixed answer returned when the corpus holds nothing
// relevant; generation is skipped entirely in that case.
const NoResultsMessage = "Désolé, je n'ai pas trouvé de dialogues pertinents pour répondre à votre question."

const promptTemplate = `Tu es un assistant intelligent qui répond aux questions en te basant sur des dialogues de conversations téléphoniques.

Contexte (extraits de dialogues):
%s

Question: %s

Réponds de manière claire et concise en français, en t'appuyant sur les informations contenues dans les dialogues. Si les dialogues ne contiennent pas d'information pertinente, dis-le clairement.`

// BuildPrompt embeds the retrieved context and the question verbatim into the
// instruction prompt. The model is told to answer only from the context and to
// say so when the context lacks an answer.
func BuildPrompt(question, context string) string {
	return fmt.Sprintf(promptTemplate, context, question)
}

// BuildContext joins the content of each retrieval hit with a blank line,
// preserving result order. Order matters: the model sees the most similar
// passages first.
func BuildContext(results []SearchResult) string {
	contents := make([]string, len(results))
	for i, res := range results {
		contents[i] = res.Content
	}
	return strings.Join(contents, "\n\n")
}
