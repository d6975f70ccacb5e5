package optimize

import (
	"context"
	"fmt"
	"strings"

	"github.com/nodalcv/server/pkg/identity"
	"github.com/nodalcv/server/pkg/llm"
	"github.com/nodalcv/server/pkg/profile"
	"github.com/nodalcv/server/pkg/workflow"
)

// Backend produces rewrites. Answers are returned in whatever shape the
// provider uses; the service extracts what it needs.
type Backend interface {
	Description(ctx context.Context, sess identity.Session, in DescriptionInput) (any, error)
	Offer(ctx context.Context, sess identity.Session, master profile.Record, target, offer string) (any, error)
	CoverLetter(ctx context.Context, sess identity.Session, rec profile.Record, in CoverLetterInput) (any, error)
}

// Workflow is the part of the workflow client used for rewrites.
type Workflow interface {
	OptimizeDescription(ctx context.Context, sess identity.Session, req workflow.DescriptionRequest) (any, error)
	OptimizeForOffer(ctx context.Context, sess identity.Session, req workflow.OfferRequest) (any, error)
	CoverLetter(ctx context.Context, sess identity.Session, req workflow.CoverLetterRequest) (any, error)
}

type workflowBackend struct {
	client Workflow
}

func NewWorkflowBackend(client Workflow) Backend {
	return &workflowBackend{client: client}
}

func (b *workflowBackend) Description(ctx context.Context, sess identity.Session, in DescriptionInput) (any, error) {
	return b.client.OptimizeDescription(ctx, sess, workflow.DescriptionRequest{
		Description:   in.Description,
		Position:      in.Position,
		Company:       in.Company,
		TargetJob:     in.TargetJob,
		JobOffer:      in.JobOffer,
		ResumeExcerpt: in.ResumeExcerpt,
	})
}

func (b *workflowBackend) Offer(ctx context.Context, sess identity.Session, master profile.Record, target, offer string) (any, error) {
	return b.client.OptimizeForOffer(ctx, sess, workflow.OfferRequest{
		CV:       profile.ForWrite(master),
		Target:   target,
		JobOffer: offer,
	})
}

func (b *workflowBackend) CoverLetter(ctx context.Context, sess identity.Session, rec profile.Record, in CoverLetterInput) (any, error) {
	return b.client.CoverLetter(ctx, sess, workflow.CoverLetterRequest{
		CV:       profile.ForWrite(rec),
		JobOffer: in.JobOffer,
		Company:  in.Company,
		Tone:     in.Tone,
	})
}

type llmBackend struct {
	model llm.ChatModel
}

// NewLLMBackend rewrites through a chat model instead of the workflow backend.
func NewLLMBackend(model llm.ChatModel) Backend {
	return &llmBackend{model: model}
}

const rewriteSystem = "Tu es un expert en recrutement qui rédige des CV en français. " +
	"Tu ne rajoutes aucun fait absent du texte fourni. Réponds sans markdown."

func (b *llmBackend) Description(ctx context.Context, _ identity.Session, in DescriptionInput) (any, error) {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Réécris cette description d'expérience de façon concise et orientée résultats.\n")
	if in.Position != "" || in.Company != "" {
		fmt.Fprintf(&sb, "Poste : %s chez %s\n", in.Position, in.Company)
	}
	if in.TargetJob != "" {
		fmt.Fprintf(&sb, "Poste visé : %s\n", in.TargetJob)
	}
	if in.JobOffer != "" {
		fmt.Fprintf(&sb, "Offre :\n<<<\n%s\n>>>\n", in.JobOffer)
	}
	if in.ResumeExcerpt != "" {
		fmt.Fprintf(&sb, "Extrait du CV :\n<<<\n%s\n>>>\n", in.ResumeExcerpt)
	}
	fmt.Fprintf(&sb, "Description :\n<<<\n%s\n>>>\nRéponds uniquement avec la nouvelle description.", in.Description)
	return b.model.Ask(ctx, rewriteSystem, sb.String())
}

func (b *llmBackend) Offer(ctx context.Context, _ identity.Session, master profile.Record, target, offer string) (any, error) {
	cv, err := jsonString(profile.ForWrite(master))
	if err != nil {
		return nil, err
	}
	user := fmt.Sprintf(
		"Adapte ce CV à l'offre ci-dessous. Garde exactement le même schéma JSON, mets \"cv_name\" à %q et "+
			"réponds STRICTEMENT avec un seul objet JSON.\nOffre :\n<<<\n%s\n>>>\nCV :\n%s",
		target, offer, cv,
	)
	reply, err := llm.AskJSON(ctx, b.model, rewriteSystem, user)
	if err != nil {
		return nil, err
	}
	return jsonObject(reply), nil
}

func (b *llmBackend) CoverLetter(ctx context.Context, _ identity.Session, rec profile.Record, in CoverLetterInput) (any, error) {
	cv, err := jsonString(profile.ForWrite(rec))
	if err != nil {
		return nil, err
	}
	tone := in.Tone
	if tone == "" {
		tone = "professionnel"
	}
	user := fmt.Sprintf(
		"Rédige une lettre de motivation d'un ton %s pour l'entreprise %q à partir du CV et de l'offre.\n"+
			"Offre :\n<<<\n%s\n>>>\nCV :\n%s\nRéponds uniquement avec la lettre.",
		tone, in.Company, in.JobOffer, cv,
	)
	return b.model.Ask(ctx, rewriteSystem, user)
}
