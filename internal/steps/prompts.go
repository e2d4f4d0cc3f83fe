package steps

import (
	"fmt"

	"github.com/Iron-Ham/appcanvas/internal/plan"
)

// Prompt templates. Each generation template takes the effective idea first
// and the clarification answer last; context sections sit in between.
const (
	refineIdeaPromptTemplate = `Original app idea: "%s".
The user clarified the primary goal is: "%s".
Please rewrite the app idea into a single, refined paragraph that incorporates this goal.
Also, identify the primary target audience based on this refined idea.`

	modulesPromptTemplate = `Based on the refined app idea "%s", and keeping in mind the user wants to focus on "%s", provide a concise, one-paragraph summary of the core concept.
Then, break down the application into logical, high-level modules that reflect this focus. For each module, provide a unique snake_case_id, a name, and a short description of its purpose. Include a "Settings" module for global application settings.`

	featuresPromptTemplate = `App Idea: "%s".
Here are the application modules:
%s

The user has indicated a preference for "%s". With that in mind, for each module listed above, define a set of specific features. For each feature, provide a unique snake_case_id, a name, and a description of what it does. Ensure each feature is assigned to the correct 'moduleId' by using the exact 'id' from the module list.`

	actionsPromptTemplate = `App Idea: "%s".
Here are the application's features, grouped by module:
%s

For each feature, define a list of specific user actions. A user action is a single, concrete task a user can perform. Focus on "%s" when defining the actions. Provide a unique snake_case_id, a name, and a description for each action. Assign each action to its parent feature using the correct 'featureId'.`

	pagesPromptTemplate = `App Idea: "%s".
Modules and features:
%s
%s

Based on the modules and features, define the primary pages or screens for the user interface. Prioritize a "%s" approach. For each page, specify its name, the 'moduleId' it belongs to, a brief description, a suggested layout type (e.g., 'Dashboard', 'Form'), and a list of key UI components it would contain.`

	databasePromptTemplate = `App Idea: "%s".
We have defined the following features and user actions:
%s
%s

Based on the data requirements implied by these features, design a database schema. Design the schema with a priority on "%s". Define the entities (tables), their attributes (columns) with data types, relationships, constraints, and logging requirements.`

	featureDetailsPromptTemplate = `App Idea: "%s".
Here are the features:
%s
And the data schema:
%s

For each feature, provide implementation details. Favor a "%s" technical approach. Consider state management, form handling (validation, submission), and authorization (e.g., 'public', 'user only', 'admin only').`

	backendPromptTemplate = `App Idea: "%s".
Context:
%s
%s
%s

Based on the application's needs, define the necessary backend logic. The architecture should lean towards a "%s" model. This includes serverless functions or API endpoints tied to features, as well as any recurring background tasks (cron jobs).`

	designSystemPromptTemplate = `App Idea: "%s".
Target Audience: "%s".
Clarification from user: The desired aesthetic is "%s".

Based on the app idea, target audience, and desired aesthetic, generate a set of design guidelines. This should include a color palette (primary, secondary, accent, neutral hex codes), typography choices (heading and body fonts), the overall style, a spacing system, and an icon style.`
)

// Clarification prompts.
const (
	refineIdeaClarification     = `To better understand your app idea "%s", which of these best describes its primary goal?`
	modulesClarification        = `For the app idea "%s", what is the most critical area to focus on when defining the main modules?`
	featuresClarification       = `When designing features for the modules we've defined, should we prioritize simplicity and ease-of-use, or a rich, comprehensive feature set?`
	actionsClarification        = `For the user actions within each feature, should the focus be on granular, step-by-step interactions or high-level, primary actions?`
	pagesClarification          = `When designing the application pages, should we prioritize a mobile-first design or a desktop/web experience?`
	databaseClarification       = `For the database schema, what is the higher priority: scalability, simplicity, or data integrity?`
	featureDetailsClarification = `Regarding the implementation details for features, what technical approach should we favor?`
	backendClarification        = `For the backend architecture, should we lean towards a serverless model for scalability or a more traditional monolithic API for simplicity?`
	designSystemClarification   = `What kind of visual style or aesthetic are you imagining for "%s"?`
)

// section renders a labelled JSON block from an earlier step, or nothing when
// that step has not produced the field yet.
func section(data plan.AppData, key plan.StepKey, field, label string) string {
	body, ok := data.Field(key, field)
	if !ok {
		return ""
	}
	return fmt.Sprintf("%s:\n%s\n", label, body)
}

func modulesContext(data plan.AppData) string {
	return section(data, plan.StepModules, "modules", "Modules")
}

func featuresContext(data plan.AppData) string {
	return section(data, plan.StepFeatures, "features", "Features")
}

func actionsContext(data plan.AppData) string {
	return section(data, plan.StepActions, "actions", "Actions")
}

func schemaContext(data plan.AppData) string {
	return section(data, plan.StepDatabase, "database", "Data Schema")
}

// rawField embeds a field without a label, rendering "null" when absent.
func rawField(data plan.AppData, key plan.StepKey, field string) string {
	body, ok := data.Field(key, field)
	if !ok {
		return "null"
	}
	return body
}

func refineIdeaPrompt(idea string, _ plan.AppData, answer string) string {
	return fmt.Sprintf(refineIdeaPromptTemplate, idea, answer)
}

func modulesPrompt(idea string, _ plan.AppData, answer string) string {
	return fmt.Sprintf(modulesPromptTemplate, idea, answer)
}

func featuresPrompt(idea string, data plan.AppData, answer string) string {
	return fmt.Sprintf(featuresPromptTemplate, idea, rawField(data, plan.StepModules, "modules"), answer)
}

func actionsPrompt(idea string, data plan.AppData, answer string) string {
	return fmt.Sprintf(actionsPromptTemplate, idea, rawField(data, plan.StepFeatures, "features"), answer)
}

func pagesPrompt(idea string, data plan.AppData, answer string) string {
	return fmt.Sprintf(pagesPromptTemplate, idea, modulesContext(data), featuresContext(data), answer)
}

func databasePrompt(idea string, data plan.AppData, answer string) string {
	return fmt.Sprintf(databasePromptTemplate, idea, featuresContext(data), actionsContext(data), answer)
}

func featureDetailsPrompt(idea string, data plan.AppData, answer string) string {
	return fmt.Sprintf(featureDetailsPromptTemplate, idea, featuresContext(data), schemaContext(data), answer)
}

func backendPrompt(idea string, data plan.AppData, answer string) string {
	return fmt.Sprintf(backendPromptTemplate, idea, featuresContext(data), actionsContext(data), schemaContext(data), answer)
}

func designSystemPrompt(idea string, data plan.AppData, answer string) string {
	return fmt.Sprintf(designSystemPromptTemplate, idea, data.Refinement().TargetAudience, answer)
}

func withIdea(template string) func(string, plan.AppData) string {
	return func(idea string, _ plan.AppData) string {
		return fmt.Sprintf(template, idea)
	}
}

func fixed(question string) func(string, plan.AppData) string {
	return func(string, plan.AppData) string {
		return question
	}
}

func designSystemClarificationPrompt(idea string, data plan.AppData) string {
	return fmt.Sprintf(designSystemClarification, data.EffectiveIdea(idea))
}
