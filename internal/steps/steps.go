// Package steps is the catalogue of wizard steps: their names, prompts and
// the response schema each one expects from the model.
package steps

import (
	"github.com/Iron-Ham/appcanvas/internal/errors"
	"github.com/Iron-Ham/appcanvas/internal/plan"
	"github.com/Iron-Ham/appcanvas/internal/schema"
)

// Step describes one stage of the wizard.
type Step struct {
	ID                 plan.StepKey
	Name               string
	Description        string
	NeedsClarification bool
	Schema             *schema.Schema

	prompt        func(idea string, data plan.AppData, answer string) string
	clarification func(idea string, data plan.AppData) string
}

// BuildPrompt returns the generation prompt for the step. idea should already
// be the effective idea (refined when available).
func (s Step) BuildPrompt(idea string, data plan.AppData, answer string) string {
	return s.prompt(idea, data, answer)
}

// BuildClarificationPrompt returns the prompt used to ask the model for a
// multiple-choice clarifying question.
func (s Step) BuildClarificationPrompt(idea string, data plan.AppData) string {
	return s.clarification(idea, data)
}

var catalogue = []Step{
	{
		ID:                 plan.StepRefineIdea,
		Name:               "Refine Idea",
		Description:        "Clarifying the core concept.",
		NeedsClarification: true,
		Schema: schema.Object(map[string]*schema.Schema{
			"refinedIdea":    schema.String().WithDescription("The refined, single-paragraph app idea."),
			"targetAudience": schema.String().WithDescription("The primary target audience for the app."),
		}, "refinedIdea", "targetAudience"),
		prompt:        refineIdeaPrompt,
		clarification: withIdea(refineIdeaClarification),
	},
	{
		ID:                 plan.StepModules,
		Name:               "Modules & Core Concept",
		Description:        "Defining the high-level structure.",
		NeedsClarification: true,
		Schema: schema.Object(map[string]*schema.Schema{
			"description": schema.String().WithDescription("A one-paragraph summary of the app idea."),
			"modules": schema.Array(schema.Object(map[string]*schema.Schema{
				"id":          schema.String().WithDescription("A unique snake_case identifier for the module."),
				"name":        schema.String().WithDescription("The user-friendly name of the module."),
				"description": schema.String().WithDescription("A short description of the module's purpose."),
			}, "id", "name", "description")).WithDescription("A list of high-level application modules."),
		}, "description", "modules"),
		prompt:        modulesPrompt,
		clarification: withIdea(modulesClarification),
	},
	{
		ID:                 plan.StepFeatures,
		Name:               "Features per Module",
		Description:        "Detailing the features for each module.",
		NeedsClarification: true,
		Schema: schema.Object(map[string]*schema.Schema{
			"features": schema.Array(schema.Object(map[string]*schema.Schema{
				"id":          schema.String().WithDescription("A unique snake_case identifier for the feature."),
				"moduleId":    schema.String().WithDescription("The ID of the module this feature belongs to."),
				"name":        schema.String().WithDescription("The user-friendly name of the feature."),
				"description": schema.String().WithDescription("A description of the feature's functionality."),
			}, "id", "moduleId", "name", "description")).WithDescription("A list of all features for the application, categorized by module."),
		}, "features"),
		prompt:        featuresPrompt,
		clarification: fixed(featuresClarification),
	},
	{
		ID:                 plan.StepActions,
		Name:               "User Actions per Feature",
		Description:        "Listing user actions for each feature.",
		NeedsClarification: true,
		Schema: schema.Object(map[string]*schema.Schema{
			"actions": schema.Array(schema.Object(map[string]*schema.Schema{
				"id":          schema.String().WithDescription("A unique snake_case identifier for the action."),
				"featureId":   schema.String().WithDescription("The ID of the feature this action belongs to."),
				"name":        schema.String().WithDescription("The name of the user action (e.g., 'Submit Form')."),
				"description": schema.String().WithDescription("A description of what happens when the user performs this action."),
			}, "id", "featureId", "name", "description")).WithDescription("A list of all user actions for the application, categorized by feature."),
		}, "actions"),
		prompt:        actionsPrompt,
		clarification: fixed(actionsClarification),
	},
	{
		ID:                 plan.StepPages,
		Name:               "Application Pages",
		Description:        "Defining UI pages and components.",
		NeedsClarification: true,
		Schema: schema.Object(map[string]*schema.Schema{
			"pages": schema.Array(schema.Object(map[string]*schema.Schema{
				"name":        schema.String(),
				"moduleId":    schema.String(),
				"description": schema.String(),
				"layout":      schema.String().WithDescription("e.g., 'Dashboard Layout', 'Two-Column', 'Modal Dialog'"),
				"components":  schema.Array(schema.String()).WithDescription("e.g., ['User Profile Card', 'Data Table', 'Search Bar']"),
			}, "name", "moduleId", "description", "layout", "components")),
		}, "pages"),
		prompt:        pagesPrompt,
		clarification: fixed(pagesClarification),
	},
	{
		ID:                 plan.StepDatabase,
		Name:               "Database Schema",
		Description:        "Designing the data model.",
		NeedsClarification: true,
		Schema: schema.Object(map[string]*schema.Schema{
			"database": schema.Array(schema.Object(map[string]*schema.Schema{
				"name": schema.String().WithDescription("The name of the data entity (e.g., 'User', 'Post')."),
				"attributes": schema.Array(schema.Object(map[string]*schema.Schema{
					"name":        schema.String(),
					"type":        schema.String().WithDescription("SQL-like data type (e.g., 'VARCHAR(255)', 'INTEGER', 'BOOLEAN', 'TIMESTAMP')."),
					"description": schema.String(),
				}, "name", "type", "description")),
				"relationships": schema.Array(schema.String()).WithDescription("e.g., ['has many Posts', 'belongs to a User']"),
				"constraints":   schema.Array(schema.String()).WithDescription("e.g., ['email must be unique', 'password must be hashed']"),
				"logging":       schema.Array(schema.String()).WithDescription("e.g., ['log on create', 'log on update']"),
			}, "name", "attributes", "relationships", "constraints", "logging")),
		}, "database"),
		prompt:        databasePrompt,
		clarification: fixed(databaseClarification),
	},
	{
		ID:                 plan.StepFeatureDetails,
		Name:               "Feature Details",
		Description:        "Fleshing out implementation details.",
		NeedsClarification: true,
		Schema: schema.Object(map[string]*schema.Schema{
			"featureDetails": schema.Array(schema.Object(map[string]*schema.Schema{
				"featureId":       schema.String(),
				"stateManagement": schema.String().WithDescription("How is UI state managed for this feature?"),
				"formHandling":    schema.String().WithDescription("How are forms and user input validated and submitted?"),
				"authorization":   schema.String().WithDescription("What permissions are required to use this feature?"),
			}, "featureId", "stateManagement", "formHandling", "authorization")),
		}, "featureDetails"),
		prompt:        featureDetailsPrompt,
		clarification: fixed(featureDetailsClarification),
	},
	{
		ID:                 plan.StepBackend,
		Name:               "Backend Logic",
		Description:        "Defining backend functions and jobs.",
		NeedsClarification: true,
		Schema: schema.Object(map[string]*schema.Schema{
			"backend": schema.Object(map[string]*schema.Schema{
				"functions": schema.Array(schema.Object(map[string]*schema.Schema{
					"featureId":   schema.String(),
					"name":        schema.String().WithDescription("e.g., 'processUserProfileUpdate'"),
					"description": schema.String().WithDescription("What does this serverless function or API endpoint do?"),
				}, "featureId", "name", "description")),
				"cronJobs": schema.Array(schema.Object(map[string]*schema.Schema{
					"name":        schema.String(),
					"schedule":    schema.String().WithDescription("e.g., '0 0 * * *' (daily at midnight)"),
					"description": schema.String().WithDescription("What does this scheduled task do?"),
				}, "name", "schedule", "description")),
			}, "functions", "cronJobs"),
		}, "backend"),
		prompt:        backendPrompt,
		clarification: fixed(backendClarification),
	},
	{
		ID:                 plan.StepDesignSystem,
		Name:               "Design System",
		Description:        "Establishing the visual style.",
		NeedsClarification: true,
		Schema: schema.Object(map[string]*schema.Schema{
			"designGuidelines": schema.Object(map[string]*schema.Schema{
				"colors": schema.Object(map[string]*schema.Schema{
					"primary":   schema.String().WithDescription("Hex code for primary color."),
					"secondary": schema.String().WithDescription("Hex code for secondary color."),
					"accent":    schema.String().WithDescription("Hex code for accent color."),
					"neutral":   schema.String().WithDescription("Hex code for neutral/background color."),
				}, "primary", "secondary", "accent", "neutral"),
				"typography": schema.Object(map[string]*schema.Schema{
					"heading": schema.String().WithDescription("Font family for headings."),
					"body":    schema.String().WithDescription("Font family for body text."),
				}, "heading", "body"),
				"style":   schema.String().WithDescription("Overall aesthetic (e.g., 'Minimalist', 'Playful', 'Corporate')."),
				"spacing": schema.String().WithDescription("Spacing system (e.g., '8-point grid system')."),
				"icons":   schema.String().WithDescription("Icon style (e.g., 'Line icons', 'Solid icons')."),
			}, "colors", "typography", "style", "spacing", "icons"),
		}, "designGuidelines"),
		prompt:        designSystemPrompt,
		clarification: designSystemClarificationPrompt,
	},
}

// All returns every step in order.
func All() []Step {
	out := make([]Step, len(catalogue))
	copy(out, catalogue)
	return out
}

// Count returns the number of steps.
func Count() int {
	return len(catalogue)
}

// Get returns the step with the given key.
func Get(key plan.StepKey) (Step, error) {
	if !key.Valid() || int(key) >= len(catalogue) {
		return Step{}, errors.NewNotFoundError("step", key.String())
	}
	return catalogue[key], nil
}

// Last returns the key of the final step.
func Last() plan.StepKey {
	return plan.StepKey(len(catalogue) - 1)
}

// ClarificationSchema is the response schema for clarifying questions.
func ClarificationSchema() *schema.Schema {
	return schema.Object(map[string]*schema.Schema{
		"question": schema.String(),
		"options":  schema.Array(schema.String()),
	}, "question", "options")
}
