package gemini

const estimatePrompt = `You are an expert nutritionist. Analyze the image of the meal and identify the food items present. Estimate the calorie count for each food item.

Return a JSON object containing a list of food items and their estimated calorie counts, matching this shape:
{"foodItems":[{"name":"<food item>","estimatedCalories":<number>}]}

Pay careful attention to datatypes for each field. estimatedCalories MUST be a number. Do not include units.
If the image contains no food, return {"foodItems":[]}.
`

const accompanimentsPrompt = `You are a food expert. Suggest common food accompaniments for the following food item.

Food Item: {{ .Food | oneline }}

Return a JSON object matching this shape:
{"accompaniments":["<accompaniment>"]}
`

const analysisPrompt = `You are a helpful nutritionist AI. Analyze the following list of recently consumed food items.
Based on this list, identify up to 3-4 common nutrients that might be lacking in this diet pattern.
For each potentially lacking nutrient, provide a brief, actionable suggestion (e.g., "Consider adding citrus fruits or bell peppers for Vitamin C.").
Also, provide some brief general feedback on the overall meal pattern if appropriate. If the meal data is very generic (e.g. "Pizza"), make reasonable assumptions or state limitations.
Focus on common micronutrients (vitamins, minerals) and macronutrient balance (protein, fiber). Avoid making medical claims or diagnoses.

Consumed Food Items:
{{- range .Items }}
- {{ .Name | oneline }}{{ with .Quantity }} ({{ . | oneline }}){{ end }}{{ if .HasCalories }} - approx. {{ kcal .Calories }} kcal{{ end }}
{{- end }}

Return a JSON object matching this shape:
{"lackingNutrients":[{"nutrient":"<nutrient>","suggestion":"<suggestion>"}],"generalFeedback":"<feedback>"}

If no specific concerns are found, the lackingNutrients array can be empty, but try to provide some general feedback.
If the food items list is very short or vague, acknowledge this limitation in your feedback.
`
