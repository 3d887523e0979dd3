package mcp

import "github.com/mark3labs/mcp-go/mcp"

// Tool names.
const (
	ToolListModels       = "list_models"
	ToolGetModel         = "get_model"
	ToolSearchAttributes = "search_attributes"
	ToolExtractFile      = "extract_file"
)

func listModelsTool() mcp.Tool {
	return mcp.NewTool(ToolListModels,
		mcp.WithDescription("List the extracted simulation models with their parent type and attribute count."),
		mcp.WithString("keyword",
			mcp.Description("Case-insensitive filter on model or parent name"),
		),
	)
}

func getModelTool() mcp.Tool {
	return mcp.NewTool(ToolGetModel,
		mcp.WithDescription("Show one model with its attributes, ancestors and children."),
		mcp.WithString("name",
			mcp.Required(),
			mcp.Description("Model name, e.g. DropTailQueue"),
		),
		mcp.WithBoolean("resolved",
			mcp.Description("Include the attributes inherited from ancestors (default: false)"),
		),
	)
}

func searchAttributesTool() mcp.Tool {
	return mcp.NewTool(ToolSearchAttributes,
		mcp.WithDescription("Search attributes of all models by name, value type or description."),
		mcp.WithString("query",
			mcp.Required(),
			mcp.Description("Case-insensitive substring"),
		),
		mcp.WithNumber("limit",
			mcp.Description("Maximum results (default: 50)"),
		),
	)
}

func extractFileTool() mcp.Tool {
	return mcp.NewTool(ToolExtractFile,
		mcp.WithDescription("Extract the models of one C++ source file or AST artifact."),
		mcp.WithString("path",
			mcp.Required(),
			mcp.Description("File path, relative to the served root or absolute"),
		),
		mcp.WithBoolean("index",
			mcp.Description("Store the result in the live index (default: true)"),
		),
	)
}
