package upload

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/nodalcv/server/pkg/identity"
	"github.com/nodalcv/server/pkg/llm"
)

// Parser turns an uploaded document into a structured payload of any shape
// profile.Normalize accepts.
type Parser interface {
	Parse(ctx context.Context, sess identity.Session, doc Document) (any, error)
}

// Document is an uploaded file with its extracted text, if any.
type Document struct {
	Filename string
	Data     []byte
	Text     string
}

// CVParser is the part of the workflow client used for parsing.
type CVParser interface {
	ParseCV(ctx context.Context, sess identity.Session, filename string, content io.Reader) (any, error)
}

type workflowParser struct {
	backend CVParser
}

// NewWorkflowParser sends the original file to the workflow backend.
func NewWorkflowParser(backend CVParser) Parser {
	return &workflowParser{backend: backend}
}

func (p *workflowParser) Parse(ctx context.Context, sess identity.Session, doc Document) (any, error) {
	return p.backend.ParseCV(ctx, sess, doc.Filename, bytes.NewReader(doc.Data))
}

type llmParser struct {
	model    llm.ChatModel
	maxChars int
}

// NewLLMParser asks a chat model to structure the extracted text.
func NewLLMParser(model llm.ChatModel) Parser {
	return &llmParser{model: model, maxChars: 12_000}
}

const parseSystemPrompt = "Tu es un assistant RH. Tu reçois le texte d'un CV. " +
	"Réponds STRICTEMENT avec un seul objet JSON, sans markdown ni commentaire. " +
	"Les listes vides sont [] et jamais null. N'invente aucun fait."

const parseUserPrompt = `Texte du CV :
<<<
%s
>>>

Schéma attendu :
{
  "personne": {"prenom": string, "nom": string, "titre": string,
    "contact": {"email": string, "telephone": string, "linkedin": string, "ville": string}},
  "resume": string,
  "experiences": [{"poste": string, "entreprise": string, "lieu": string, "periode_debut": string, "periode_fin": string, "description": string}],
  "projets": [{"nom": string, "description": string, "technologies": string[], "lien": string, "periode_debut": string, "periode_fin": string}],
  "formations": [{"diplome": string, "etablissement": string, "periode_debut": string, "periode_fin": string, "description": string}],
  "certifications": [{"nom": string, "organisme": string, "date": string, "lien": string}],
  "competences": {"hard_skills": string[], "soft_skills": string[], "langues": string[]}
}`

func (p *llmParser) Parse(ctx context.Context, _ identity.Session, doc Document) (any, error) {
	text := strings.TrimSpace(doc.Text)
	if text == "" {
		return nil, errors.New("no text could be extracted from the document")
	}
	text = Excerpt(text, p.maxChars)
	raw, err := llm.AskJSON(ctx, p.model, parseSystemPrompt, fmt.Sprintf(parseUserPrompt, text))
	if err != nil {
		return nil, fmt.Errorf("llm parse: %w", err)
	}
	return jsonObject(raw), nil
}

// jsonObject strips chatter around the first JSON object of a model reply.
// The result is a string that profile.Normalize decodes.
func jsonObject(reply string) string {
	reply = strings.TrimSpace(reply)
	if i := strings.Index(reply, "{"); i >= 0 {
		if j := strings.LastIndex(reply, "}"); j > i {
			return reply[i : j+1]
		}
	}
	return reply
}
