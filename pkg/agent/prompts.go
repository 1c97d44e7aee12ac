package agent

// SystemPrompt opens every request.
const SystemPrompt = "You are a helpful AI assistant integrated into the user's markdown note vault. You can converse naturally with the user. If they provide note context, use it to answer their questions or help them brainstorm."

// Greeting is the first panel entry.
const Greeting = "Hello! Ask me anything. If you highlight text in your note, I will remember it and focus on that. I can also search your entire vault or update your note metadata if you ask me to!"
