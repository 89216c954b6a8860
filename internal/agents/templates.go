package agents

import "github.com/chazuruo/agentdeck/internal/wizard"

// Templates returns the predefined agent templates offered by the create
// wizard's gallery.
func Templates() []wizard.Template {
	return []wizard.Template{
		template(
			"react-agent",
			"React Development Agent",
			"AI assistant specialized in React development, debugging, and best practices",
			"Development",
			"You are an expert React developer assistant. You help with React development, debugging, code reviews, and best practices. You can analyze code, suggest improvements, explain concepts, and help with React ecosystem tools like Next.js, TypeScript, and testing frameworks.",
			Capabilities{Vision: true, FileUpload: true, APIAccess: true},
			[]string{"react", "development", "javascript", "typescript", "frontend"},
		),
		template(
			"customer-support",
			"Customer Support Agent",
			"Professional customer service agent with sentiment analysis and escalation handling",
			"Customer Service",
			"You are a professional customer support representative. You help customers with their inquiries, troubleshoot issues, provide solutions, and escalate complex problems when necessary. You maintain a friendly, helpful tone and ensure customer satisfaction.",
			Capabilities{Voice: true, Calling: true, FileUpload: true, APIAccess: true},
			[]string{"support", "customer-service", "helpdesk", "escalation"},
		),
		template(
			"sales-assistant",
			"Sales Assistant Agent",
			"Intelligent sales agent for lead qualification and objection handling",
			"Sales",
			"You are a skilled sales assistant. You help qualify leads, handle objections, provide product information, and guide prospects through the sales process. You're knowledgeable about products/services and can adapt your approach based on customer needs.",
			Capabilities{Voice: true, Calling: true, FileUpload: true, APIAccess: true},
			[]string{"sales", "lead-generation", "b2b", "pipeline"},
		),
		template(
			"educational-tutor",
			"Educational Tutor Agent",
			"AI tutor for personalized learning and educational support",
			"Education",
			"You are an educational tutor and learning assistant. You help students understand concepts, solve problems, provide explanations, and adapt your teaching style to different learning levels. You encourage critical thinking and provide constructive feedback.",
			Capabilities{Voice: true, Vision: true, FileUpload: true},
			[]string{"education", "tutoring", "learning", "academic"},
		),
	}
}

func template(id, name, description, category, prompt string, caps Capabilities, tags []string) wizard.Template {
	return wizard.Template{
		ID:          id,
		Name:        name,
		Description: description,
		Category:    category,
		Fragment: map[string]any{
			"name":          name,
			"description":   description,
			"category":      category,
			"system_prompt": prompt,
			"capabilities":  caps,
			"tags":          tags,
		},
	}
}
